package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kevinmichaelchen/portfolio/internal/particles"
)

const (
	variantTrail = "trail"
	variantGlow  = "glow"

	defaultWidth  = 1280
	defaultHeight = 720
	maxDimension  = 10000
	maxCount      = 500
)

type fieldParams struct {
	Variant string
	Config  particles.Config
	Width   float64
	Height  float64
	Frames  int
}

type snapshot struct {
	Variant string             `json:"variant"`
	Width   float64            `json:"width"`
	Height  float64            `json:"height"`
	Config  particles.Config   `json:"config"`
	Circles []particles.Circle `json:"circles"`
}

func parseFieldParams(c *gin.Context) (fieldParams, error) {
	p := fieldParams{Variant: c.DefaultQuery("variant", variantTrail)}

	var def int
	switch p.Variant {
	case variantTrail:
		def = 20
	case variantGlow:
		def = 25
	default:
		return p, fmt.Errorf("unknown variant %q", p.Variant)
	}

	count, err := intQuery(c, "count", def, 0, maxCount)
	if err != nil {
		return p, err
	}
	w, err := intQuery(c, "w", defaultWidth, 1, maxDimension)
	if err != nil {
		return p, err
	}
	h, err := intQuery(c, "h", defaultHeight, 1, maxDimension)
	if err != nil {
		return p, err
	}
	if p.Frames, err = intQuery(c, "frames", 0, 0, 1<<20); err != nil {
		return p, err
	}

	if p.Variant == variantGlow {
		p.Config = particles.GlowConfig(count)
	} else {
		p.Config = particles.TrailConfig(count)
	}
	p.Width, p.Height = float64(w), float64(h)
	return p, nil
}

func intQuery(c *gin.Context, key string, def, lo, hi int) (int, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer", key)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s: must be between %d and %d", key, lo, hi)
	}
	return n, nil
}

// particleSnapshot returns a freshly created field without advancing it.
func (s *Server) particleSnapshot(c *gin.Context) {
	p, err := parseFieldParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	field := particles.NewField(p.Config, p.Width, p.Height)
	c.JSON(http.StatusOK, snapshot{
		Variant: p.Variant,
		Width:   p.Width,
		Height:  p.Height,
		Config:  p.Config,
		Circles: particles.Render(field.Particles()),
	})
}

// particleStream sends one "frame" event per tick until the client goes
// away or, when frames is set, that many frames have been sent.
func (s *Server) particleStream(c *gin.Context) {
	p, err := parseFieldParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	field := particles.NewField(p.Config, p.Width, p.Height)
	sent := 0
	_ = field.Run(ctx, s.framePeriod, func(ps []particles.Particle) {
		if p.Frames > 0 && sent >= p.Frames {
			return
		}
		c.SSEvent("frame", particles.Render(ps))
		c.Writer.Flush()
		sent++
		if p.Frames > 0 && sent >= p.Frames {
			cancel()
		}
	})
	s.log.Debug("particle stream closed", "variant", p.Variant, "frames", sent)
}
