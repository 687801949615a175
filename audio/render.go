package audio

import (
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"go-wander/music"
	"go-wander/sequencer"
)

// tail lets the last release ring out.
const tail = 250 * time.Millisecond

// Render schedules measures back to back on an offline engine and returns a
// streamer covering the whole piece.
func Render(sr beep.SampleRate, measures []music.Measure) beep.Streamer {
	e := NewEngine(sr)
	for i, m := range measures {
		sequencer.ScheduleMeasure(e, m, time.Duration(i)*sequencer.MeasureDuration)
	}
	total := time.Duration(len(measures))*sequencer.MeasureDuration + tail
	return beep.Take(sr.N(total), e)
}

// RenderWAV writes measures to path as 16-bit stereo WAV.
func RenderWAV(path string, sr beep.SampleRate, measures []music.Measure) error {
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating export dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	format := beep.Format{
		SampleRate:  sr,
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(f, Render(sr, measures), format); err != nil {
		return errors.Wrap(err, "encoding wav")
	}
	return nil
}
