package jot

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// fixedBackend measures text as 10px per rune by 20px and images by their
// bounds, and records the raster requests it receives.
type fixedBackend struct {
	requests []RasterRequest
}

func (b *fixedBackend) Measure(kind Kind, c Content) (Size, error) {
	if kind == KindImage {
		r := c.Image.Bounds()
		return Size{W: float64(r.Dx()), H: float64(r.Dy())}, nil
	}
	return Size{W: float64(10 * len([]rune(c.Text))), H: 20}, nil
}

func (b *fixedBackend) Rasterize(req RasterRequest) (Layer, error) {
	b.requests = append(b.requests, req)
	return Layer{}, nil
}

func (b *fixedBackend) Compose(size image.Point, base image.Image, layers []Layer) (*image.NRGBA, error) {
	return image.NewNRGBA(image.Rectangle{Max: size}), nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func newTestContainer(t *testing.T, opts Options) (*Container, *fixedBackend) {
	t.Helper()
	b := &fixedBackend{}
	if opts.Backend == nil {
		opts.Backend = b
	}
	opts.NewID = sequentialIDs()
	c, err := NewContainer(opts)
	require.NoError(t, err)
	return c, b
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}

// addImageAt adds a w×h image element centered on (x, y).
func addImageAt(t *testing.T, c *Container, w, h int, x, y float64) *Element {
	t.Helper()
	e, err := c.AddImage(solidImage(w, h, color.White))
	require.NoError(t, err)
	require.NoError(t, e.MoveCenterTo(Pt(x, y)))
	return e
}

func gesture(kind GestureKind, phase Phase, p Point) GestureEvent {
	return GestureEvent{Kind: kind, Phase: phase, Point: p}
}

func pan(t *testing.T, c *Container, from Point, by Point) {
	t.Helper()
	require.NoError(t, c.HandleGesture(gesture(GesturePan, PhaseBegan, from)))
	ev := gesture(GesturePan, PhaseChanged, from)
	ev.Translation = by
	require.NoError(t, c.HandleGesture(ev))
	require.NoError(t, c.HandleGesture(gesture(GesturePan, PhaseEnded, from.Add(by))))
}
