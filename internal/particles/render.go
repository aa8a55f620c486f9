package particles

const (
	headSize      = 6.0
	headLightness = 70.0
	trailOpacity  = 0.7
)

// Circle is one filled, blurred dot on the overlay, colored in HSL.
type Circle struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Size       float64 `json:"size"`
	Hue        float64 `json:"h"`
	Saturation float64 `json:"s"`
	Lightness  float64 `json:"l"`
	Opacity    float64 `json:"o"`
}

// Render projects particles onto circles in draw order: each particle's trail
// oldest first, then the particle itself. A trail entry k ticks older than the
// newest one is drawn smaller, darker and fainter by k steps.
func Render(ps []Particle) []Circle {
	n := 0
	for _, p := range ps {
		n += len(p.Trail) + 1
	}
	out := make([]Circle, 0, n)

	for _, p := range ps {
		for i, t := range p.Trail {
			age := float64(len(p.Trail) - 1 - i)
			out = append(out, Circle{
				X:          t.X,
				Y:          t.Y,
				Size:       headSize - age,
				Hue:        p.Hue,
				Saturation: 100,
				Lightness:  headLightness - 10*age,
				Opacity:    trailOpacity - 0.1*age,
			})
		}
		out = append(out, Circle{
			X:          p.Pos.X,
			Y:          p.Pos.Y,
			Size:       headSize,
			Hue:        p.Hue,
			Saturation: 100,
			Lightness:  headLightness,
			Opacity:    1,
		})
	}
	return out
}
