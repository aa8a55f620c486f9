package particles

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultPeriod is the tick interval, roughly 60 frames per second.
const DefaultPeriod = 16 * time.Millisecond

// Config parameterizes one particle overlay.
type Config struct {
	Count  int     `json:"count"`
	Speed  float64 `json:"speed"`
	Policy Policy  `json:"policy"`
	Trail  bool    `json:"trail"`
}

// TrailConfig is the overlay of the about, contact and error pages.
func TrailConfig(count int) Config {
	return Config{Count: count, Speed: 1.0, Policy: PauseAndBounce, Trail: true}
}

// GlowConfig is the lighter, trail-less overlay of the resume page.
func GlowConfig(count int) Config {
	return Config{Count: count, Speed: 0.75, Policy: OvershootAndBounce}
}

// Field owns the particles of one overlay for the lifetime of its view.
type Field struct {
	mu        sync.Mutex
	cfg       Config
	width     float64
	height    float64
	particles []Particle
}

type Option func(*fieldOptions)

type fieldOptions struct {
	rng *rand.Rand
}

// WithRand seeds the field from rng instead of a random source.
func WithRand(rng *rand.Rand) Option {
	return func(o *fieldOptions) { o.rng = rng }
}

func NewField(cfg Config, width, height float64, opts ...Option) *Field {
	o := fieldOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Field{
		cfg:       cfg,
		width:     width,
		height:    height,
		particles: Create(o.rng, cfg.Count, width, height, cfg.Speed),
	}
}

func (f *Field) Config() Config {
	return f.cfg
}

// Step advances the field by one tick.
func (f *Field) Step() {
	f.mu.Lock()
	defer f.mu.Unlock()
	Advance(f.particles, f.width, f.height, f.cfg.Policy, f.cfg.Trail)
}

// Resize changes the bounds used from the next tick on. Particles already
// outside the new bounds bounce back in.
func (f *Field) Resize(width, height float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
}

// Particles returns a deep copy of the current state.
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Particle, len(f.particles))
	for i, p := range f.particles {
		out[i] = p
		if p.Trail != nil {
			out[i].Trail = append([]Vec(nil), p.Trail...)
		}
	}
	return out
}

// Run ticks the field every period until ctx is done and hands each new
// state to onFrame. The ticker lives exactly as long as the call. A slow
// onFrame delays the following tick: the ticker holds at most one pending
// tick, so each step advances the field once and is never batched. No step
// runs once ctx is done, even if a tick is already pending. Run returns
// ctx.Err().
func (f *Field) Run(ctx context.Context, period time.Duration, onFrame func([]Particle)) error {
	if period <= 0 {
		period = DefaultPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			f.Step()
			if onFrame != nil {
				onFrame(f.Particles())
			}
		}
	}
}
