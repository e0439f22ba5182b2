package jot

import (
	"fmt"
	"math"

	"gioui.org/f32"
	"github.com/stevestencil/jot/utils"
)

// Transform is the placement of one element on the canvas.
// TranslationX and TranslationY locate the element's center; Scale is
// always greater than zero; Rotation is in radians, clockwise on screen.
type Transform struct {
	TranslationX float64
	TranslationY float64
	Scale        float64
	Rotation     float64
}

// IdentityTransform returns a transform with unit scale, no rotation and
// the center at the canvas origin.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Center returns the canvas location of the element's center.
func (t Transform) Center() Point {
	return Point{X: t.TranslationX, Y: t.TranslationY}
}

// Tuple returns the transform in the order consumed by a graphics backend.
func (t Transform) Tuple() (tx, ty, scale, rotation float64) {
	return t.TranslationX, t.TranslationY, t.Scale, t.Rotation
}

// NormalizedRotation returns the rotation reduced to [0, 2π).
func (t Transform) NormalizedRotation() float64 {
	r := math.Mod(t.Rotation, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

// Matrix returns the mapping from element-local coordinates, where the
// content spans (0,0)-(bounds.W,bounds.H), to canvas coordinates: the
// content is rotated about its center, scaled, then moved to the translation.
func (t Transform) Matrix(bounds Size) f32.Affine2D {
	return f32.Affine2D{}.
		Offset(f32.Pt(float32(-bounds.W/2), float32(-bounds.H/2))).
		Rotate(f32.Point{}, float32(t.Rotation)).
		Scale(f32.Point{}, f32.Pt(float32(t.Scale), float32(t.Scale))).
		Offset(t.Center().f32())
}

// Contains reports whether the canvas point p lies inside the transformed bounds.
func (t Transform) Contains(bounds Size, p Point) bool {
	local := t.Matrix(bounds).Invert().Transform(p.f32())
	return local.X >= 0 && local.Y >= 0 &&
		float64(local.X) <= bounds.W && float64(local.Y) <= bounds.H
}

// Frame returns the axis-aligned bounding box of the transformed bounds.
func (t Transform) Frame(bounds Size) Rect {
	m := t.Matrix(bounds)
	corners := [4]f32.Point{
		m.Transform(f32.Pt(0, 0)),
		m.Transform(f32.Pt(float32(bounds.W), 0)),
		m.Transform(f32.Pt(0, float32(bounds.H))),
		m.Transform(f32.Pt(float32(bounds.W), float32(bounds.H))),
	}
	r := Rect{Min: fromF32(corners[0]), Max: fromF32(corners[0])}
	for _, c := range corners[1:] {
		p := fromF32(c)
		r.Min.X, r.Min.Y = math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)
		r.Max.X, r.Max.Y = math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)
	}
	return r
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%.2f, %.2f) scale(%.3f) rotate(%.3frad)",
		t.TranslationX, t.TranslationY, t.Scale, t.Rotation)
}

// ScaleLimits bounds the scale of every element.
type ScaleLimits struct {
	Min, Max float64
}

// DefaultScaleLimits keeps elements between a tenth and ten times their intrinsic size.
var DefaultScaleLimits = ScaleLimits{Min: 0.1, Max: 10}

// Validate checks that the limits describe a non-empty positive range.
func (l ScaleLimits) Validate() error {
	if !(l.Min > 0) || math.IsInf(l.Max, 0) || !(l.Max >= l.Min) {
		return fmt.Errorf("%w: scale limits [%v, %v]", ErrInvalidOptions, l.Min, l.Max)
	}
	return nil
}

func (l ScaleLimits) clamp(s float64) float64 {
	return utils.Clamp(s, l.Min, l.Max)
}

func validFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}

func (t Transform) finite() bool {
	return finite(t.TranslationX, t.TranslationY, t.Rotation)
}

// TransformModel owns the transform of a single element and applies
// gesture increments to it.
type TransformModel struct {
	t      Transform
	limits ScaleLimits

	// raw is the unclamped product of all accepted scale factors, so that
	// scaling past a limit and back lands on the clamped product.
	raw float64
}

// NewTransformModel returns a model starting at t, with t's scale clamped to limits.
func NewTransformModel(t Transform, limits ScaleLimits) *TransformModel {
	m := &TransformModel{limits: limits}
	m.Set(t)
	return m
}

// Transform returns a copy of the current transform.
func (m *TransformModel) Transform() Transform {
	return m.t
}

// Limits returns the scale limits of the model.
func (m *TransformModel) Limits() ScaleLimits {
	return m.limits
}

// Set overwrites the whole transform. A non-positive scale is replaced by 1.
func (m *TransformModel) Set(t Transform) {
	if !validFactor(t.Scale) {
		t.Scale = 1
	}
	m.raw = t.Scale
	t.Scale = m.limits.clamp(t.Scale)
	m.t = t
}

// Scale multiplies the scale by factor, clamped to the model limits.
func (m *TransformModel) Scale(factor float64) error {
	if !validFactor(factor) {
		return fmt.Errorf("%w: %v", ErrInvalidScaleFactor, factor)
	}
	m.raw *= factor
	m.t.Scale = m.limits.clamp(m.raw)
	return nil
}

// Rotate adds delta radians to the rotation.
func (m *TransformModel) Rotate(delta float64) error {
	if !finite(m.t.Rotation + delta) {
		return fmt.Errorf("%w: rotation by %v", ErrInvalidTransform, delta)
	}
	m.t.Rotation += delta
	return nil
}

// Translate moves the element by (dx, dy).
func (m *TransformModel) Translate(dx, dy float64) error {
	if !finite(m.t.TranslationX+dx, m.t.TranslationY+dy) {
		return fmt.Errorf("%w: translation by (%v, %v)", ErrInvalidTransform, dx, dy)
	}
	m.t.TranslationX += dx
	m.t.TranslationY += dy
	return nil
}

// ComposeFrom sets the transform to base combined with increments that
// are cumulative since the start of a gesture. Scale and rotation pivot on
// the element's center, so only translation moves the center.
func (m *TransformModel) ComposeFrom(base Transform, scale, rotation float64, translation Point) error {
	return m.ComposeAbout(base, base.Center(), scale, rotation, translation)
}

// ComposeAbout is like ComposeFrom but scales and rotates about anchor,
// a canvas point such as the focal point of a pinch.
func (m *TransformModel) ComposeAbout(base Transform, anchor Point, scale, rotation float64, translation Point) error {
	if !validFactor(scale) {
		return fmt.Errorf("%w: %v", ErrInvalidScaleFactor, scale)
	}
	if !validFactor(base.Scale) {
		base.Scale = 1
	}
	if !base.finite() || !anchor.finite() || !translation.finite() || !finite(rotation) {
		return fmt.Errorf("%w: rotation %v, translation %v", ErrInvalidTransform, rotation, translation)
	}
	raw := base.Scale * scale
	if !validFactor(raw) {
		return fmt.Errorf("%w: %v", ErrInvalidScaleFactor, raw)
	}
	clamped := m.limits.clamp(raw)

	// The center orbits the anchor by the effective (clamped) scale ratio.
	ratio := clamped / m.limits.clamp(base.Scale)
	sin, cos := math.Sincos(rotation)
	d := base.Center().Sub(anchor)
	center := Point{
		X: anchor.X + ratio*(d.X*cos-d.Y*sin),
		Y: anchor.Y + ratio*(d.X*sin+d.Y*cos),
	}.Add(translation)
	if !center.finite() {
		return fmt.Errorf("%w: center %v", ErrInvalidTransform, center)
	}

	m.raw = raw
	m.t = Transform{
		TranslationX: center.X,
		TranslationY: center.Y,
		Scale:        clamped,
		Rotation:     base.Rotation + rotation,
	}
	return nil
}
