package jot

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRaster(t *testing.T) *RasterBackend {
	t.Helper()
	b, err := NewRasterBackend()
	require.NoError(t, err)
	return b
}

func TestRaster_MeasureText(t *testing.T) {
	b := newRaster(t)

	one, err := b.Measure(KindText, Content{Text: "jot", Style: DefaultTextStyle})
	require.NoError(t, err)
	assert.True(t, one.Valid())

	two, err := b.Measure(KindText, Content{Text: "jot\njot", Style: DefaultTextStyle})
	require.NoError(t, err)
	assert.Equal(t, one.W, two.W)
	assert.Equal(t, 2*one.H, two.H)

	style := DefaultTextStyle
	style.Shadow = 4
	padded, err := b.Measure(KindText, Content{Text: "jot", Style: style})
	require.NoError(t, err)
	assert.Equal(t, one.W+8, padded.W)

	empty, err := b.Measure(KindText, Content{Style: DefaultTextStyle})
	require.NoError(t, err)
	assert.False(t, empty.Valid())

	_, err = b.Measure(KindImage, Content{})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRaster_RasterizeImage(t *testing.T) {
	b := newRaster(t)
	src := solidImage(40, 20, color.NRGBA{B: 255, A: 255})

	req := RasterRequest{
		Kind:         KindImage,
		Content:      Content{Image: src},
		Bounds:       Size{W: 40, H: 20},
		TranslationX: 100,
		TranslationY: 50,
		Scale:        0.5,
	}
	l, err := b.Rasterize(req)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 10), l.Image.Bounds().Size())
	assert.Equal(t, image.Pt(90, 45), l.Origin)

	// A quarter turn stands the element upright.
	req.Scale = 1
	req.Rotation = math.Pi / 2
	l, err = b.Rasterize(req)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 40), l.Image.Bounds().Size())
	assert.Equal(t, image.Pt(90, 30), l.Origin)

	req.Scale = 0.01
	l, err = b.Rasterize(req)
	require.NoError(t, err)
	assert.True(t, l.Empty())

	req.Scale = 1
	req.Content.Blend = "hue"
	_, err = b.Rasterize(req)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	req.Content.Blend = ""
	req.Content.Composite = "punch"
	_, err = b.Rasterize(req)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	req.Content.Composite = "src_atop"
	l, err = b.Rasterize(req)
	require.NoError(t, err)
	assert.Equal(t, "src_atop", l.Composite)

	req.Rotation = math.NaN()
	_, err = b.Rasterize(req)
	assert.ErrorIs(t, err, ErrInvalidTransform)

	// Whole turns of a huge angle reduce to an upright layer.
	req.Rotation = 1e6 * math.Pi
	l, err = b.Rasterize(req)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 20), l.Image.Bounds().Size())
}

func TestRaster_RasterizeText(t *testing.T) {
	b := newRaster(t)
	style := TextStyle{Color: color.NRGBA{R: 255, A: 255}, FontSize: 24, Shadow: 3}
	content := Content{Text: "Hello", Style: style}

	bounds, err := b.Measure(KindText, content)
	require.NoError(t, err)

	l, err := b.Rasterize(RasterRequest{
		Kind:    KindText,
		Content: content,
		Bounds:  bounds,
		Scale:   2,
	})
	require.NoError(t, err)
	size := l.Image.Bounds().Size()
	assert.Equal(t, int(math.Round(bounds.W*2)), size.X)
	assert.Equal(t, int(math.Round(bounds.H*2)), size.Y)

	opaque := false
	for i := 3; i < len(l.Image.Pix); i += 4 {
		if l.Image.Pix[i] == 255 {
			opaque = true
			break
		}
	}
	assert.True(t, opaque)
}

func TestRaster_ComposeBlend(t *testing.T) {
	b := newRaster(t)
	base := solidImage(4, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	layer := Layer{
		Image:  solidImage(2, 2, color.NRGBA{R: 255, G: 0, B: 255, A: 255}),
		Origin: image.Pt(3, 3),
		Blend:  "multiply",
	}

	out, err := b.Compose(image.Pt(4, 4), base, []Layer{layer, {}})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 255, A: 255}, out.NRGBAAt(3, 3))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(2, 2))

	layer.Blend = "screen"
	out, err = b.Compose(image.Pt(4, 4), base, []Layer{layer})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(3, 3))

	_, err = b.Compose(image.Point{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestRaster_ComposeOperation(t *testing.T) {
	b := newRaster(t)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	layer := Layer{
		Image:     solidImage(2, 2, green),
		Origin:    image.Pt(1, 1),
		Composite: "dst_out",
	}

	out, err := b.Compose(image.Pt(4, 4), solidImage(4, 4, white), []Layer{layer})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(1, 1))
	assert.Equal(t, white, out.NRGBAAt(0, 0))

	// Source-atop only paints where the backdrop is opaque.
	layer.Composite = "src_atop"
	out, err = b.Compose(image.Pt(4, 4), nil, []Layer{layer})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(1, 1))

	out, err = b.Compose(image.Pt(4, 4), solidImage(4, 4, white), []Layer{layer})
	require.NoError(t, err)
	assert.Equal(t, green, out.NRGBAAt(2, 2))

	layer.Composite = "punch"
	_, err = b.Compose(image.Pt(4, 4), nil, []Layer{layer})
	assert.Error(t, err)
}
