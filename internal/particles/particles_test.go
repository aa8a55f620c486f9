package particles

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestCreate_CountAndBounds(t *testing.T) {
	for _, count := range []int{0, 1, 20, 25, 500} {
		ps := Create(testRand(), count, 800, 600, 1)
		require.Len(t, ps, count)
		for _, p := range ps {
			assert.GreaterOrEqual(t, p.Pos.X, 0.0)
			assert.Less(t, p.Pos.X, 800.0)
			assert.GreaterOrEqual(t, p.Pos.Y, 0.0)
			assert.Less(t, p.Pos.Y, 600.0)
			assert.GreaterOrEqual(t, p.Hue, 0.0)
			assert.Less(t, p.Hue, 360.0)
			assert.LessOrEqual(t, p.Vel.X, 1.0)
			assert.GreaterOrEqual(t, p.Vel.X, -1.0)
			assert.Empty(t, p.Trail)
		}
	}
}

func TestCreate_NegativeCount(t *testing.T) {
	ps := Create(testRand(), -3, 800, 600, 1)
	assert.NotNil(t, ps)
	assert.Empty(t, ps)
}

func TestCreate_SpeedScalesVelocity(t *testing.T) {
	for _, p := range Create(testRand(), 200, 100, 100, 0.75) {
		assert.LessOrEqual(t, p.Vel.X, 0.75)
		assert.GreaterOrEqual(t, p.Vel.X, -0.75)
		assert.LessOrEqual(t, p.Vel.Y, 0.75)
		assert.GreaterOrEqual(t, p.Vel.Y, -0.75)
	}
}

func TestAdvance_FreeMotion(t *testing.T) {
	ps := []Particle{{Pos: Vec{10, 10}, Vel: Vec{1.5, -0.5}}}
	for _, policy := range []Policy{PauseAndBounce, OvershootAndBounce} {
		got := append([]Particle(nil), ps...)
		Advance(got, 100, 100, policy, false)
		assert.Equal(t, Vec{11.5, 9.5}, got[0].Pos, policy.String())
		assert.Equal(t, Vec{1.5, -0.5}, got[0].Vel, policy.String())
	}
}

func TestAdvance_PauseAndBounce_LeftWall(t *testing.T) {
	ps := []Particle{{Pos: Vec{0.5, 50}, Vel: Vec{-1, 0.25}}}

	Advance(ps, 100, 100, PauseAndBounce, false)

	assert.Equal(t, 0.5, ps[0].Pos.X, "x held at the wall")
	assert.Equal(t, 1.0, ps[0].Vel.X, "x velocity flipped")
	assert.Equal(t, 50.25, ps[0].Pos.Y, "y axis unaffected")
	assert.Equal(t, 0.25, ps[0].Vel.Y)

	Advance(ps, 100, 100, PauseAndBounce, false)
	assert.Equal(t, 1.5, ps[0].Pos.X, "moves away on the next tick")
}

func TestAdvance_PauseAndBounce_Corner(t *testing.T) {
	ps := []Particle{{Pos: Vec{99.5, 99.5}, Vel: Vec{1, 1}}}

	Advance(ps, 100, 100, PauseAndBounce, false)

	assert.Equal(t, Vec{99.5, 99.5}, ps[0].Pos)
	assert.Equal(t, Vec{-1, -1}, ps[0].Vel)
}

func TestAdvance_PauseAndBounce_EdgeIsInside(t *testing.T) {
	ps := []Particle{{Pos: Vec{99, 1}, Vel: Vec{1, -1}}}

	Advance(ps, 100, 100, PauseAndBounce, false)

	assert.Equal(t, Vec{100, 0}, ps[0].Pos)
	assert.Equal(t, Vec{1, -1}, ps[0].Vel)
}

func TestAdvance_OvershootAndBounce(t *testing.T) {
	ps := []Particle{{Pos: Vec{0.5, 50}, Vel: Vec{-1, 0}}}

	Advance(ps, 100, 100, OvershootAndBounce, false)

	assert.Equal(t, -0.5, ps[0].Pos.X, "overshoots the wall")
	assert.Equal(t, 1.0, ps[0].Vel.X)

	Advance(ps, 100, 100, OvershootAndBounce, false)
	assert.Equal(t, 0.5, ps[0].Pos.X, "comes back inside")
	assert.Equal(t, 1.0, ps[0].Vel.X)
}

func TestAdvance_TrailBounded(t *testing.T) {
	ps := Create(testRand(), 10, 300, 200, 2)

	for tick := 1; tick <= 50; tick++ {
		before := ps[0].Pos
		Advance(ps, 300, 200, PauseAndBounce, true)
		for _, p := range ps {
			assert.LessOrEqual(t, len(p.Trail), MaxTrail)
		}
		assert.Equal(t, before, ps[0].Trail[len(ps[0].Trail)-1], "pre-tick position appended last")
		if tick < MaxTrail {
			assert.Len(t, ps[0].Trail, tick)
		}
	}
}

func TestAdvance_TrailDropsOldestFirst(t *testing.T) {
	ps := []Particle{{Pos: Vec{0, 0}, Vel: Vec{1, 1}}}
	for i := 0; i < 7; i++ {
		Advance(ps, 100, 100, PauseAndBounce, true)
	}
	assert.Equal(t, []Vec{{2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}}, ps[0].Trail)
}

func TestAdvance_NoTrailWhenDisabled(t *testing.T) {
	ps := []Particle{{Pos: Vec{5, 5}, Vel: Vec{1, 1}}}
	Advance(ps, 100, 100, OvershootAndBounce, false)
	assert.Nil(t, ps[0].Trail)
}

func TestField_ParticlesIsACopy(t *testing.T) {
	f := NewField(TrailConfig(3), 200, 200, WithRand(testRand()))
	f.Step()

	snap := f.Particles()
	snap[0].Pos.X = -999
	snap[0].Trail[0].X = -999

	fresh := f.Particles()
	assert.NotEqual(t, -999.0, fresh[0].Pos.X)
	assert.NotEqual(t, -999.0, fresh[0].Trail[0].X)
}

func TestField_Presets(t *testing.T) {
	trail := TrailConfig(25)
	assert.Equal(t, PauseAndBounce, trail.Policy)
	assert.True(t, trail.Trail)
	assert.Equal(t, 1.0, trail.Speed)

	glow := GlowConfig(25)
	assert.Equal(t, OvershootAndBounce, glow.Policy)
	assert.False(t, glow.Trail)
	assert.Equal(t, 0.75, glow.Speed)
}

func TestField_Resize(t *testing.T) {
	f := NewField(Config{Count: 1, Speed: 1, Policy: PauseAndBounce}, 1000, 1000, WithRand(testRand()))
	f.Resize(1, 1)
	for i := 0; i < 10; i++ {
		f.Step()
	}
	// held particles never move further away once the bounds shrink
	p := f.Particles()[0]
	assert.GreaterOrEqual(t, p.Pos.X, 0.0)
}

func TestField_RunStopsOnCancel(t *testing.T) {
	f := NewField(TrailConfig(5), 400, 300, WithRand(testRand()))
	ctx, cancel := context.WithCancel(context.Background())

	var frames atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- f.Run(ctx, time.Millisecond, func(ps []Particle) {
			assert.Len(t, ps, 5)
			if frames.Add(1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int64(3), frames.Load())

	n := frames.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, frames.Load(), "no frames after Run returned")
}

func TestField_RunNoStepAfterCancel(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := NewField(TrailConfig(2), 100, 100, WithRand(testRand()))
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		err := f.Run(ctx, time.Millisecond, func([]Particle) {
			calls++
			// let the next tick queue up before cancelling
			time.Sleep(3 * time.Millisecond)
			cancel()
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls, "run %d", i)
		for _, p := range f.Particles() {
			require.Len(t, p.Trail, 1, "run %d: field stepped after cancel", i)
		}
	}
}

func TestRender(t *testing.T) {
	ps := []Particle{
		{Pos: Vec{10, 20}, Hue: 200, Trail: []Vec{{1, 1}, {2, 2}, {3, 3}}},
		{Pos: Vec{50, 60}, Hue: 40},
	}

	circles := Render(ps)
	require.Len(t, circles, 5)

	oldest, newest, head := circles[0], circles[2], circles[3]
	assert.Equal(t, 1.0, oldest.X)
	assert.InDelta(t, 4.0, oldest.Size, 1e-9)
	assert.InDelta(t, 50.0, oldest.Lightness, 1e-9)
	assert.InDelta(t, 0.5, oldest.Opacity, 1e-9)

	assert.Equal(t, 3.0, newest.X)
	assert.InDelta(t, 6.0, newest.Size, 1e-9)
	assert.InDelta(t, 70.0, newest.Lightness, 1e-9)
	assert.InDelta(t, 0.7, newest.Opacity, 1e-9)

	assert.Equal(t, Circle{X: 10, Y: 20, Size: 6, Hue: 200, Saturation: 100, Lightness: 70, Opacity: 1}, head)
	assert.Equal(t, 40.0, circles[4].Hue)

	for _, c := range circles {
		assert.Equal(t, 100.0, c.Saturation)
	}
}
