package audio

import (
	"context"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"

	"go-wander/debug"
	"go-wander/sequencer"
)

const DefaultSampleRate = beep.SampleRate(44100)

// Engine is a sequencer.Synth that renders notes in-process and plays them
// through the speaker. Its clock is the number of samples streamed so far.
type Engine struct {
	sr beep.SampleRate

	mu     sync.Mutex
	mixer  beep.Mixer
	pos    int
	active bool

	// replaced in tests
	initSpeaker func(beep.SampleRate, int) error
	play        func(beep.Streamer)
}

var _ sequencer.Synth = (*Engine)(nil)

func NewEngine(sr beep.SampleRate) *Engine {
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	return &Engine{
		sr:          sr,
		initSpeaker: speaker.Init,
		play: func(s beep.Streamer) {
			speaker.Play(s)
		},
	}
}

// Start opens the audio device once and begins streaming. A device error is
// returned and the next Start tries again.
func (e *Engine) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if active {
		return nil
	}

	if err := e.initSpeaker(e.sr, e.sr.N(time.Second/30)); err != nil {
		return errors.Wrap(err, "opening audio device")
	}
	e.mu.Lock()
	e.active = true
	e.mu.Unlock()
	e.play(e)
	debug.Log("audio", "speaker started at %d Hz", e.sr)
	return nil
}

// Now is the duration of audio streamed so far.
func (e *Engine) Now() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sr.D(e.pos)
}

// TriggerNote adds a tone to the mix, delayed by silence until n.At.
func (e *Engine) TriggerNote(n sequencer.Trigger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delay := max(0, e.sr.N(n.At-e.sr.D(e.pos)))
	t := newTone(e.sr, n.Frequency, n.Duration, roleGain[n.Role])
	e.mixer.Add(beep.Seq(beep.Silence(delay), t))
}

// ReleaseAll drops every playing and pending tone.
func (e *Engine) ReleaseAll() {
	e.mu.Lock()
	n := e.mixer.Len()
	e.mixer.Clear()
	e.mu.Unlock()
	debug.Log("audio", "release all (%d streamers)", n)
}

// Voices is the number of tones in the mix.
func (e *Engine) Voices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mixer.Len()
}

// Stream implements beep.Streamer. It never ends; with nothing to play it
// streams silence.
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mixer.Stream(samples)
	e.pos += len(samples)
	return len(samples), true
}

func (e *Engine) Err() error {
	return nil
}
