package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlend_Basic(t *testing.T) {
	assert := assert.New(t)

	op := NewBlend()
	assert.Equal(Normal, op.Get())
	err := op.Set("blend_mode_not_supported")
	assert.Error(err)
	assert.Equal(Normal, op.Get())

	assert.NoError(op.Set(Darken))
	assert.Equal(Darken, op.Get())
	assert.NoError(op.Set(Lighten))
	assert.Equal(Lighten, op.Get())

	assert.True(IsBlendMode(Multiply))
	assert.False(IsBlendMode("hue"))
}

func TestBlend_Modes(t *testing.T) {
	// Channels are kept at 0, 128 or 255 so that every result is exact
	// after rounding.
	front := color.NRGBA{R: 255, G: 0, B: 128, A: 255}
	back := color.NRGBA{R: 128, G: 255, B: 0, A: 255}

	testCases := []struct {
		mode     string
		expected []uint8
	}{
		{Normal, []uint8{255, 0, 128, 255}},
		{Darken, []uint8{128, 0, 0, 255}},
		{Lighten, []uint8{255, 255, 128, 255}},
		{Multiply, []uint8{128, 0, 0, 255}},
		{Screen, []uint8{255, 255, 128, 255}},
		{Difference, []uint8{127, 255, 128, 255}},
		{Exclusion, []uint8{127, 255, 128, 255}},
	}

	rect := image.Rect(0, 0, 1, 1)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	draw.Draw(source, rect, &image.Uniform{front}, image.Point{}, draw.Src)
	draw.Draw(backdrop, rect, &image.Uniform{back}, image.Point{}, draw.Src)

	for _, tc := range testCases {
		t.Run(tc.mode, func(t *testing.T) {
			blend := NewBlend()
			assert.NoError(t, blend.Set(tc.mode))

			bmp := InitOp().Draw(nil, source, backdrop, blend)
			assert.EqualValues(t, tc.expected, bmp.Img.Pix)
		})
	}
}

func TestBlend_TransparentBackdropKeepsSource(t *testing.T) {
	front := color.NRGBA{R: 10, G: 200, B: 30, A: 255}

	rect := image.Rect(0, 0, 1, 1)
	source := image.NewNRGBA(rect)
	backdrop := image.NewNRGBA(rect)
	draw.Draw(source, rect, &image.Uniform{front}, image.Point{}, draw.Src)

	blend := NewBlend()
	assert.NoError(t, blend.Set(Multiply))

	bmp := InitOp().Draw(nil, source, backdrop, blend)
	assert.EqualValues(t, []uint8{10, 200, 30, 255}, bmp.Img.Pix)
}
