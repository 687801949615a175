package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

// Flags are the global command line overrides
type Flags struct {
	ConfigPath *string
	Backend    *string
	Port       *string
	Seed       *uint64
	Archive    *string
	NoArchive  *bool
	Palette    *string
	Debug      *bool
}

// RegisterFlags adds the global flags to app
func RegisterFlags(app *kingpin.Application) *Flags {
	return &Flags{
		ConfigPath: app.Flag("config", "Config file (default ~/.config/go-wander/config.json)").Short('c').String(),
		Backend:    app.Flag("backend", "Synth backend").Short('b').Enum(string(BackendMIDI), string(BackendAudio)),
		Port:       app.Flag("port", "MIDI output port name (substring match)").Short('p').String(),
		Seed:       app.Flag("seed", "Random seed, 0 for time based").Short('s').Uint64(),
		Archive:    app.Flag("archive", "SQLite archive file").String(),
		NoArchive:  app.Flag("no-archive", "Do not archive measures").Bool(),
		Palette:    app.Flag("palette", "GIMP palette file").String(),
		Debug:      app.Flag("debug", "Write debug log to ~/.config/go-wander/debug.log").Short('d').Bool(),
	}
}

// Load reads the config file named by --config, or the default one
func (f *Flags) Load() (*Config, error) {
	if *f.ConfigPath != "" {
		return LoadFrom(*f.ConfigPath)
	}
	return Load()
}

// Apply overrides c with every flag that was given
func (f *Flags) Apply(c *Config) {
	if *f.Backend != "" {
		c.Backend = Backend(*f.Backend)
	}
	if *f.Port != "" {
		c.SynthOutput.PortName = *f.Port
	}
	if *f.Seed != 0 {
		c.Seed = *f.Seed
	}
	if *f.Archive != "" {
		c.ArchivePath = *f.Archive
	}
	if *f.Palette != "" {
		c.UI.Palette = *f.Palette
	}
}
