package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"

	"go-wander/audio"
	"go-wander/config"
	"go-wander/debug"
	"go-wander/midi"
	"go-wander/music"
	"go-wander/sequencer"
	"go-wander/theme"
	"go-wander/tui"
)

func main() {
	app := kingpin.New("go-wander", "Endless three-voice random walk in C major.")
	flags := config.RegisterFlags(app)

	play := app.Command("play", "Open the player (default).").Default()

	ports := app.Command("ports", "List MIDI output ports.")

	export := app.Command("export", "Compose measures offline and write them to a file.")
	exportMeasures := export.Flag("measures", "Number of measures").Short('n').Default("16").Int()
	exportOut := export.Flag("out", "Output file (.mid, .wav, or - for MIDI on stdout); default is a timestamped .mid in the exports dir").Short('o').String()
	exportSession := export.Flag("session", "Export an archived session instead of composing").String()
	exportName := export.Flag("name", "Name appended to the timestamped file name").String()

	exports := app.Command("exports", "List exported MIDI files.")

	sessions := app.Command("sessions", "List archived sessions.")

	configCmd := app.Command("config", "Print the effective config.")
	configSave := configCmd.Flag("save", "Write the effective config to the config file").Bool()

	cmd, err := app.Parse(os.Args[1:])
	if err != nil {
		app.FatalUsage("%v\n", err)
	}

	cfg, err := flags.Load()
	app.FatalIfError(err, "config")
	flags.Apply(cfg)
	app.FatalIfError(cfg.Validate(), "config")

	if *flags.Debug {
		app.FatalIfError(debug.Enable(), "debug log")
		defer debug.Disable()
	}

	switch cmd {
	case play.FullCommand():
		err = runPlay(cfg, *flags.NoArchive)
	case ports.FullCommand():
		err = runPorts()
	case export.FullCommand():
		err = runExport(cfg, *exportMeasures, *exportOut, *exportSession, *exportName)
	case exports.FullCommand():
		err = runExports()
	case sessions.FullCommand():
		err = runSessions(cfg)
	case configCmd.FullCommand():
		err = runConfig(cfg, *flags.ConfigPath, *configSave)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "go-wander: %v\n", err)
		os.Exit(1)
	}
}

func archivePath(cfg *config.Config) (string, error) {
	if cfg.ArchivePath != "" {
		return cfg.ArchivePath, nil
	}
	return config.DefaultArchivePath()
}

func openArchive(cfg *config.Config) (*sequencer.Archive, error) {
	path, err := archivePath(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating archive dir")
	}
	return sequencer.OpenArchive(path)
}

func runPlay(cfg *config.Config, noArchive bool) error {
	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := tui.Options{
		Backend:    string(cfg.Backend),
		WindowSize: cfg.UI.WindowSize,
	}
	if opts.ExportDir, err = sequencer.ExportsDir(); err != nil {
		return err
	}

	var synth sequencer.Synth
	switch cfg.Backend {
	case config.BackendMIDI:
		out, err := midi.OpenOutput(cfg.SynthOutput.PortName, midi.Options{
			Channels: cfg.RoleChannels(),
			Velocity: uint8(cfg.SynthOutput.Velocity),
		})
		if err != nil {
			return err
		}
		defer midi.CloseDriver()
		defer out.Close()
		synth = out
		opts.Backend = "midi:" + out.PortName()
		opts.Queued = out.Pending

		// Create port watcher (handles hot-plug)
		watcher := midi.NewPortWatcher()
		go watcher.Run(ctx)
		opts.Watcher = watcher
	default:
		engine := audio.NewEngine(audio.DefaultSampleRate)
		synth = engine
		opts.Queued = engine.Voices
	}

	log := sequencer.NewLog(cfg.UI.MeasureWidth)
	if !noArchive {
		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()
		id := archive.Attach(log)
		debug.Log("main", "archiving session %s", id)
	}

	composer := music.NewComposer(music.NewSource(cfg.Seed))
	session := sequencer.NewSession(synth, log, composer, sequencer.TickerPeriodic{})
	defer session.Teardown()

	// Create and run TUI
	m := tui.NewModel(session, th, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "tui")
	}
	return nil
}

func runPorts() error {
	fmt.Println("=== MIDI Output Ports ===")
	names, err := midi.OutPortNames(midi.ScanTimeout)
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	defer midi.CloseDriver()
	if len(names) == 0 {
		fmt.Println("  (none)")
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
	return nil
}

func runExport(cfg *config.Config, n int, out, session, name string) error {
	var measures []music.Measure
	if session != "" {
		id, err := uuid.Parse(session)
		if err != nil {
			return errors.Wrapf(err, "session id %q", session)
		}
		archive, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer archive.Close()
		if measures, err = archive.Load(id); err != nil {
			return err
		}
		if len(measures) == 0 {
			return errors.Errorf("no measures archived for session %s", id)
		}
	} else {
		if n <= 0 {
			return errors.New("--measures must be positive")
		}
		composer := music.NewComposer(music.NewSource(cfg.Seed))
		var prev *music.Measure
		for i := 0; i < n; i++ {
			m := composer.Compose(prev)
			measures = append(measures, m)
			prev = &m
		}
	}

	if out == "" {
		dir, err := sequencer.ExportsDir()
		if err != nil {
			return err
		}
		out = filepath.Join(dir, sequencer.TimestampedName(time.Now(), name))
	}

	var err error
	if out == "-" {
		if err := sequencer.ExportSMF(os.Stdout, measures); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d measures to stdout\n", len(measures))
		return nil
	}
	if strings.EqualFold(filepath.Ext(out), ".wav") {
		err = audio.RenderWAV(out, audio.DefaultSampleRate, measures)
	} else {
		err = sequencer.ExportFile(out, measures)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d measures to %s\n", len(measures), out)
	return nil
}

func runSessions(cfg *config.Config) error {
	archive, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer archive.Close()

	list, err := archive.Sessions()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no archived sessions")
	}
	for _, s := range list {
		fmt.Printf("%s  %s  %4d measures\n", s.ID, s.Started.Format("2006-01-02 15:04:05"), s.Measures)
	}
	return nil
}

func runExports() error {
	dir, err := sequencer.ExportsDir()
	if err != nil {
		return err
	}
	list, err := sequencer.ListExports(dir)
	if err != nil {
		return errors.Wrapf(err, "listing %s", dir)
	}
	if len(list) == 0 {
		fmt.Println("no exports in", dir)
	}
	for _, e := range list {
		fmt.Printf("%s  %-20s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Name, filepath.Join(dir, e.Filename))
	}
	return nil
}

func runConfig(cfg *config.Config, path string, save bool) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	fmt.Println(string(data))
	if !save {
		return nil
	}
	if path != "" {
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return errors.Wrap(err, "saving config")
	}
	fmt.Println("saved")
	return nil
}
