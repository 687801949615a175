package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"

	"go-wander/music"
)

const (
	attack  = 5 * time.Millisecond
	release = 40 * time.Millisecond
)

// roleGain keeps three simultaneous voices under full scale.
var roleGain = map[music.Role]float64{
	music.Low:    0.28,
	music.Mid:    0.18,
	music.Melody: 0.22,
}

// tone is a sine oscillator with a linear attack/release envelope. It ends
// after total samples.
type tone struct {
	step    float64 // phase increment per sample
	phase   float64
	pos     int
	total   int
	attack  int
	release int
	gain    float64
}

func newTone(sr beep.SampleRate, freq float64, d time.Duration, gain float64) *tone {
	total := sr.N(d)
	return &tone{
		step:    2 * math.Pi * freq / float64(sr),
		total:   total,
		attack:  max(1, min(sr.N(attack), total/2)),
		release: max(1, min(sr.N(release), total/2)),
		gain:    gain,
	}
}

func (t *tone) envelope() float64 {
	switch {
	case t.pos < t.attack:
		return float64(t.pos) / float64(t.attack)
	case t.pos >= t.total-t.release:
		return float64(t.total-t.pos) / float64(t.release)
	}
	return 1
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		v := math.Sin(t.phase) * t.envelope() * t.gain
		samples[i][0] = v
		samples[i][1] = v
		t.phase += t.step
		t.pos++
		n++
	}
	return n, true
}

func (t *tone) Err() error {
	return nil
}
