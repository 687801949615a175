package music

// Voice is the ordered pitch sequence of one role within a measure.
type Voice []Pitch

// Last returns the final pitch of the voice.
func (v Voice) Last() (Pitch, bool) {
	if len(v) == 0 {
		return 0, false
	}
	return v[len(v)-1], true
}

// Measure is one four-beat unit with a voice per role.
type Measure struct {
	Low    Voice `json:"low"`
	Mid    Voice `json:"mid"`
	Melody Voice `json:"melody"`
}

// Voice returns the voice for r.
func (m Measure) Voice(r Role) Voice {
	switch r {
	case Low:
		return m.Low
	case Mid:
		return m.Mid
	case Melody:
		return m.Melody
	}
	return nil
}

// Tail returns the last pitch played by r in this measure.
func (m Measure) Tail(r Role) (Pitch, bool) {
	return m.Voice(r).Last()
}

func (m *Measure) set(r Role, v Voice) {
	switch r {
	case Low:
		m.Low = v
	case Mid:
		m.Mid = v
	case Melody:
		m.Melody = v
	}
}

// Composer builds measures from a random source.
type Composer struct {
	src Source
}

// NewComposer returns a composer drawing from src.
func NewComposer(src Source) *Composer {
	return &Composer{src: src}
}

// Compose builds the next measure. Each role continues from the tail pitch of
// the same role in prev; with no prev every role starts at its anchor.
func (c *Composer) Compose(prev *Measure) Measure {
	var m Measure
	for _, r := range Roles {
		var seed *Pitch
		if prev != nil {
			if p, ok := prev.Tail(r); ok {
				seed = &p
			}
		}
		m.set(r, Generate(c.src, seed, Spec(r)))
	}
	return m
}
