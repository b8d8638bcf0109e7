package placement

import (
	"fmt"
	"math"
)

// Default tuning values.
const (
	DefaultCardWidth       = 200.0
	DefaultCardHeight      = 120.0
	DefaultMinGap          = 20.0
	DefaultBoundaryPadding = 40.0
	DefaultInitialRadius   = 200.0
	DefaultRadiusStep      = 20.0
	DefaultAngleStep       = 0.1 // radians
	DefaultMaxAttempts     = 50
)

// Config holds the tuning constants of the placement search.
// All lengths share the unit of the container bounds.
type Config struct {
	CardWidth       float64 `toml:"card_width" json:"card_width"`
	CardHeight      float64 `toml:"card_height" json:"card_height"`
	MinGap          float64 `toml:"min_gap" json:"min_gap"`
	BoundaryPadding float64 `toml:"boundary_padding" json:"boundary_padding"`
	InitialRadius   float64 `toml:"initial_radius" json:"initial_radius"`
	RadiusStep      float64 `toml:"radius_step" json:"radius_step"`
	AngleStep       float64 `toml:"angle_step" json:"angle_step"`
	MaxAttempts     int     `toml:"max_attempts" json:"max_attempts"`
}

// DefaultConfig returns the stock tuning: 200×120 cards, 20 gap, 40 padding,
// radius 200 growing by 20, angle turning by 0.1 rad, 50 attempts.
func DefaultConfig() Config {
	return Config{
		CardWidth:       DefaultCardWidth,
		CardHeight:      DefaultCardHeight,
		MinGap:          DefaultMinGap,
		BoundaryPadding: DefaultBoundaryPadding,
		InitialRadius:   DefaultInitialRadius,
		RadiusStep:      DefaultRadiusStep,
		AngleStep:       DefaultAngleStep,
		MaxAttempts:     DefaultMaxAttempts,
	}
}

// WithDefaults returns a copy of c where every zero field takes its default.
// Non-zero fields, including negative ones, are kept as given.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.CardWidth == 0 {
		c.CardWidth = d.CardWidth
	}
	if c.CardHeight == 0 {
		c.CardHeight = d.CardHeight
	}
	if c.MinGap == 0 {
		c.MinGap = d.MinGap
	}
	if c.BoundaryPadding == 0 {
		c.BoundaryPadding = d.BoundaryPadding
	}
	if c.InitialRadius == 0 {
		c.InitialRadius = d.InitialRadius
	}
	if c.RadiusStep == 0 {
		c.RadiusStep = d.RadiusStep
	}
	if c.AngleStep == 0 {
		c.AngleStep = d.AngleStep
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	return c
}

// Validate rejects configurations that cannot describe a card layout.
// Zero fields are accepted because WithDefaults fills them.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"card_width", c.CardWidth},
		{"card_height", c.CardHeight},
		{"min_gap", c.MinGap},
		{"boundary_padding", c.BoundaryPadding},
		{"initial_radius", c.InitialRadius},
		{"radius_step", c.RadiusStep},
		{"angle_step", c.AngleStep},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite (got %g)", f.name, f.v)
		}
	}
	switch {
	case c.CardWidth < 0 || c.CardHeight < 0:
		return fmt.Errorf("card size must not be negative (got %gx%g)", c.CardWidth, c.CardHeight)
	case c.MinGap < 0:
		return fmt.Errorf("min_gap must not be negative (got %g)", c.MinGap)
	case c.BoundaryPadding < 0:
		return fmt.Errorf("boundary_padding must not be negative (got %g)", c.BoundaryPadding)
	case c.InitialRadius < 0:
		return fmt.Errorf("initial_radius must not be negative (got %g)", c.InitialRadius)
	case c.RadiusStep < 0:
		return fmt.Errorf("radius_step must not be negative (got %g)", c.RadiusStep)
	case c.MaxAttempts < 0:
		return fmt.Errorf("max_attempts must not be negative (got %d)", c.MaxAttempts)
	}
	return nil
}

// CardSize returns the configured card extent.
func (c Config) CardSize() Size {
	return Size{Width: c.CardWidth, Height: c.CardHeight}
}
