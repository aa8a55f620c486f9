// Package particles simulates the ambient neon particles drawn behind the
// portfolio pages: a fixed set of points drifting at constant speed and
// bouncing off the viewport edges, optionally dragging a short trail.
package particles

import (
	"math/rand/v2"
)

// MaxTrail is the number of prior positions a trailing particle remembers.
const MaxTrail = 5

// Vec is a point or a per-tick displacement in viewport pixels.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Particle is one drifting point of an overlay.
type Particle struct {
	Pos   Vec     `json:"pos"`
	Vel   Vec     `json:"vel"`
	Hue   float64 `json:"hue"`
	Trail []Vec   `json:"trail,omitempty"` // oldest first
}

// Policy is how a particle reacts to a candidate position outside the viewport.
type Policy int

const (
	// PauseAndBounce keeps the particle where it is on the offending axis and
	// reverses its velocity there. The particle sits at the wall for one tick.
	PauseAndBounce Policy = iota
	// OvershootAndBounce moves the particle anyway and reverses the velocity
	// afterwards, so it spends one tick past the wall.
	OvershootAndBounce
)

func (p Policy) String() string {
	switch p {
	case PauseAndBounce:
		return "pause"
	case OvershootAndBounce:
		return "overshoot"
	default:
		return "unknown"
	}
}

// Create returns count particles placed uniformly in [0,width) x [0,height),
// with each velocity component uniform in [-speed, speed) and a random hue.
func Create(rng *rand.Rand, count int, width, height, speed float64) []Particle {
	if count <= 0 {
		return []Particle{}
	}
	ps := make([]Particle, count)
	for i := range ps {
		ps[i] = Particle{
			Pos: Vec{X: rng.Float64() * width, Y: rng.Float64() * height},
			Vel: Vec{X: (rng.Float64()*2 - 1) * speed, Y: (rng.Float64()*2 - 1) * speed},
			Hue: rng.Float64() * 360,
		}
	}
	return ps
}

// Advance moves every particle by one tick, in place.
func Advance(ps []Particle, width, height float64, policy Policy, trail bool) {
	for i := range ps {
		p := &ps[i]
		prev := p.Pos
		next := Vec{X: p.Pos.X + p.Vel.X, Y: p.Pos.Y + p.Vel.Y}
		outX := next.X < 0 || next.X > width
		outY := next.Y < 0 || next.Y > height

		switch policy {
		case OvershootAndBounce:
			p.Pos = next
		default:
			if !outX {
				p.Pos.X = next.X
			}
			if !outY {
				p.Pos.Y = next.Y
			}
		}
		if outX {
			p.Vel.X = -p.Vel.X
		}
		if outY {
			p.Vel.Y = -p.Vel.Y
		}

		if trail {
			p.Trail = appendTrail(p.Trail, prev)
		}
	}
}

func appendTrail(t []Vec, v Vec) []Vec {
	t = append(t, v)
	if n := len(t); n > MaxTrail {
		// shift down instead of reslicing so the backing array stays bounded
		copy(t, t[n-MaxTrail:])
		t = t[:MaxTrail]
	}
	return t
}
