package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"go-wander/music"
)

// Backend selects the synth implementation
type Backend string

const (
	BackendMIDI  Backend = "midi"
	BackendAudio Backend = "audio"
)

// SynthOutputConfig defines the synth MIDI output
type SynthOutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channels []int  `json:"channels,omitempty"` // low, mid, melody (1-16)
	Velocity int    `json:"velocity,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	WindowSize   int    `json:"windowSize,omitempty"`
	MeasureWidth int    `json:"measureWidth,omitempty"`
	Palette      string `json:"palette,omitempty"` // .gpl path, empty for built-in
}

// Config is the main configuration structure
type Config struct {
	Backend     Backend           `json:"backend,omitempty"`
	SynthOutput SynthOutputConfig `json:"synthOutput,omitempty"`
	UI          UIConfig          `json:"ui,omitempty"`
	Seed        uint64            `json:"seed,omitempty"` // 0 picks one from the clock
	ArchivePath string            `json:"archivePath,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendAudio,
		SynthOutput: SynthOutputConfig{
			Channels: []int{1, 2, 3},
			Velocity: 100,
		},
		UI: UIConfig{
			WindowSize:   4,
			MeasureWidth: 24,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-wander"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultArchivePath is where measures are archived when the config names no
// other file
func DefaultArchivePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks values a user could have mistyped
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMIDI, BackendAudio:
	default:
		return errors.Errorf("unknown backend %q", c.Backend)
	}
	if n := len(c.SynthOutput.Channels); n != 0 && n != len(music.Roles) {
		return errors.Errorf("need %d synth channels, got %d", len(music.Roles), n)
	}
	for _, ch := range c.SynthOutput.Channels {
		if ch < 1 || ch > 16 {
			return errors.Errorf("midi channel %d out of range 1-16", ch)
		}
	}
	if c.SynthOutput.Velocity < 1 || c.SynthOutput.Velocity > 127 {
		return errors.Errorf("velocity %d out of range 1-127", c.SynthOutput.Velocity)
	}
	if c.UI.WindowSize < 0 || c.UI.MeasureWidth < 0 {
		return errors.New("window size and measure width must not be negative")
	}
	return nil
}

// RoleChannels maps each role to its 1-based MIDI channel
func (c *Config) RoleChannels() map[music.Role]int {
	chans := c.SynthOutput.Channels
	if len(chans) != len(music.Roles) {
		chans = []int{1, 2, 3}
	}
	out := make(map[music.Role]int, len(music.Roles))
	for i, r := range music.Roles {
		out[r] = chans[i]
	}
	return out
}
