package sequencer

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-wander/music"
)

const (
	TicksPerQuarter = 960
	ExportVelocity  = 100

	timestampLayout = "2006-01-02_15-04-05"
)

// ExportInfo describes a file in the exports directory
type ExportInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// ExportsDir returns the directory exported MIDI files are written to
func ExportsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-wander", "exports"), nil
}

// TimestampedName builds 2006-01-02_15-04-05[_name].mid
func TimestampedName(now time.Time, name string) string {
	ts := now.Format(timestampLayout)
	if name == "" {
		return ts + ".mid"
	}
	return ts + "_" + sanitizeFilename(name) + ".mid"
}

// ListExports returns exported files in dir, newest first
func ListExports(dir string) ([]ExportInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ExportInfo{}, nil
		}
		return nil, err
	}

	var out []ExportInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".mid") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".mid")
		if len(base) < len(timestampLayout) {
			continue
		}
		ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
		if err != nil {
			continue
		}
		name := ""
		if len(base) > len(timestampLayout)+1 && base[len(timestampLayout)] == '_' {
			name = base[len(timestampLayout)+1:]
		}
		out = append(out, ExportInfo{Filename: entry.Name(), Name: name, Timestamp: ts})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}

func roleChannel(r music.Role) uint8 {
	return uint8(r)
}

// BuildSMF renders measures as a format 1 file: a tempo track followed by one
// track per role on channels 0, 1 and 2.
func BuildSMF(measures []music.Measure) (*smf.SMF, error) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(BeatsPerMeasure, 4))
	tempo.Add(0, smf.MetaTempo(Tempo))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, errors.Wrap(err, "adding tempo track")
	}

	for _, r := range music.Roles {
		ticks := uint32(music.Spec(r).BeatsPerNote * TicksPerQuarter)
		ch := roleChannel(r)

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(r.String()))
		var delta uint32
		for _, m := range measures {
			for _, p := range m.Voice(r) {
				key := uint8(max(0, min(127, int(p))))
				track.Add(delta, gomidi.NoteOn(ch, key, ExportVelocity))
				track.Add(ticks, gomidi.NoteOff(ch, key))
				delta = 0
			}
		}
		track.Close(0)
		if err := sm.Add(track); err != nil {
			return nil, errors.Wrapf(err, "adding %s track", r)
		}
	}
	return sm, nil
}

// ExportSMF writes measures to w as a standard MIDI file.
func ExportSMF(w io.Writer, measures []music.Measure) error {
	sm, err := BuildSMF(measures)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing midi file")
	}
	return nil
}

// ExportFile writes measures to path, creating parent directories.
func ExportFile(path string, measures []music.Measure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating export dir")
	}
	sm, err := BuildSMF(measures)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
