package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/alecthomas/kingpin.v2"

	"go-wander/music"
)

func TestLoadMissingGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendAudio || cfg.UI.WindowSize != 4 || cfg.SynthOutput.Velocity != 100 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Backend = BackendMIDI
	cfg.SynthOutput.PortName = "FluidSynth"
	cfg.SynthOutput.Channels = []int{10, 11, 12}
	cfg.Seed = 42
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Backend != BackendMIDI || got.SynthOutput.PortName != "FluidSynth" || got.Seed != 42 {
		t.Errorf("loaded %+v", got)
	}
	if chans := got.RoleChannels(); chans[music.Low] != 10 || chans[music.Melody] != 12 {
		t.Errorf("role channels = %v", chans)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend":"midi"}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendMIDI || cfg.UI.MeasureWidth != 24 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad backend", func(c *Config) { c.Backend = "webaudio" }, false},
		{"two channels", func(c *Config) { c.SynthOutput.Channels = []int{1, 2} }, false},
		{"channel 17", func(c *Config) { c.SynthOutput.Channels = []int{1, 2, 17} }, false},
		{"velocity", func(c *Config) { c.SynthOutput.Velocity = 128 }, false},
		{"zero velocity", func(c *Config) { c.SynthOutput.Velocity = 0 }, false},
		{"negative width", func(c *Config) { c.UI.MeasureWidth = -1 }, false},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestSaveUsesConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.Seed = 99
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "go-wander", "config.json")); err != nil {
		t.Fatalf("config file: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 99 {
		t.Errorf("seed = %d, want 99", got.Seed)
	}
}

func TestZeroVelocityFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"synthOutput":{"velocity":0}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("velocity 0 accepted")
	}
}

func TestInvalidFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend":"tape"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("invalid backend accepted")
	}
}

func TestFlagsOverride(t *testing.T) {
	app := kingpin.New("test", "")
	flags := RegisterFlags(app)
	if _, err := app.Parse([]string{"--backend=midi", "--port", "IAC", "--seed", "7"}); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.ArchivePath = "keep.db"
	flags.Apply(cfg)

	if cfg.Backend != BackendMIDI || cfg.SynthOutput.PortName != "IAC" || cfg.Seed != 7 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ArchivePath != "keep.db" {
		t.Errorf("unset flag overrode archive path: %q", cfg.ArchivePath)
	}
}

func TestFlagsRejectUnknownBackend(t *testing.T) {
	app := kingpin.New("test", "")
	RegisterFlags(app)
	if _, err := app.Parse([]string{"--backend=tape"}); err == nil {
		t.Error("unknown backend accepted")
	}
}
