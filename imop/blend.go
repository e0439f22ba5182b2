package imop

import (
	"fmt"

	"github.com/stevestencil/jot/utils"
)

// Separable blend modes from W3C Compositing and Blending Level 1.
const (
	Normal     = "normal"
	Darken     = "darken"
	Lighten    = "lighten"
	Multiply   = "multiply"
	Screen     = "screen"
	Overlay    = "overlay"
	HardLight  = "hard_light"
	Difference = "difference"
	Exclusion  = "exclusion"
)

var blendModes = []string{Normal, Darken, Lighten, Multiply, Screen, Overlay, HardLight, Difference, Exclusion}

// Blend holds the currently active blend mode.
type Blend struct {
	OpType string
}

// NewBlend initializes a new Blend using the Normal mode.
func NewBlend() *Blend {
	return &Blend{OpType: Normal}
}

// IsBlendMode reports whether mode is a supported blend mode.
func IsBlendMode(mode string) bool {
	return utils.Contains(blendModes, mode)
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(opType string) error {
	if !IsBlendMode(opType) {
		return fmt.Errorf("unsupported blend mode: %q", opType)
	}
	o.OpType = opType
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() string {
	return o.OpType
}

// apply mixes the backdrop channel cb with the source channel cs.
// Both are normalized to [0, 1].
func (o *Blend) apply(cb, cs float64) float64 {
	switch o.OpType {
	case Darken:
		return utils.Min(cb, cs)
	case Lighten:
		return utils.Max(cb, cs)
	case Multiply:
		return cb * cs
	case Screen:
		return cb + cs - cb*cs
	case Overlay:
		return hardLight(cs, cb)
	case HardLight:
		return hardLight(cb, cs)
	case Difference:
		return utils.Abs(cb - cs)
	case Exclusion:
		return cb + cs - 2*cb*cs
	}
	return cs
}

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb * 2 * cs
	}
	s := 2*cs - 1
	return cb + s - cb*s
}
