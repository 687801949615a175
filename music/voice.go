package music

import (
	"math/rand/v2"
	"time"
)

// Role is one of the three fixed parts of a measure.
type Role int

const (
	Low Role = iota
	Mid
	Melody
)

// Roles lists every role in measure order.
var Roles = []Role{Low, Mid, Melody}

func (r Role) String() string {
	switch r {
	case Low:
		return "low"
	case Mid:
		return "mid"
	case Melody:
		return "melody"
	}
	return "unknown"
}

// Register is an inclusive pitch range.
type Register struct {
	Min, Max Pitch
}

// Clamp limits p to the register.
func (r Register) Clamp(p Pitch) Pitch {
	if p < r.Min {
		return r.Min
	}
	if p > r.Max {
		return r.Max
	}
	return p
}

// RoleSpec holds the fixed generation parameters for a role.
type RoleSpec struct {
	Role         Role
	Count        int // notes per measure
	Register     Register
	Step         int     // semitones per walk step
	Anchor       Pitch   // start pitch when there is no previous measure
	BeatsPerNote float64 // 1 = quarter, 0.5 = eighth
}

var specs = map[Role]RoleSpec{
	Low:    {Role: Low, Count: 4, Register: Register{36, 60}, Step: 2, Anchor: 60, BeatsPerNote: 1},
	Mid:    {Role: Mid, Count: 4, Register: Register{48, 72}, Step: 2, Anchor: 60, BeatsPerNote: 1},
	Melody: {Role: Melody, Count: 8, Register: Register{60, 84}, Step: 1, Anchor: 72, BeatsPerNote: 0.5},
}

// Spec returns the generation parameters for r.
func Spec(r Role) RoleSpec {
	return specs[r]
}

// Source is the random source the walk draws directions from.
// *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a PCG-backed source. A zero seed picks one from the clock.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Walk runs the constrained random walk from start, calling visit with the raw
// candidate, the clamped value and the quantized result of every step.
func Walk(src Source, start Pitch, spec RoleSpec, visit func(raw, clamped, quantized Pitch)) {
	current := start
	for i := 0; i < spec.Count; i++ {
		dir := 1
		if src.IntN(2) == 0 {
			dir = -1
		}
		raw := current + Pitch(dir*spec.Step)
		clamped := spec.Register.Clamp(raw)
		q := Quantize(clamped)
		visit(raw, clamped, q)
		current = q
	}
}

// Generate produces spec.Count pitches starting from seed, or from the role
// anchor when seed is nil.
func Generate(src Source, seed *Pitch, spec RoleSpec) Voice {
	start := spec.Anchor
	if seed != nil {
		start = *seed
	}
	v := make(Voice, 0, spec.Count)
	Walk(src, start, spec, func(_, _, q Pitch) {
		v = append(v, q)
	})
	return v
}
