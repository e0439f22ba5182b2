package jot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// textRenderer lays out and draws text elements. Faces are cached per
// size; a font.Face is not safe for concurrent use, hence the lock.
type textRenderer struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

func newTextRenderer() (*textRenderer, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing the default font: %w", err)
	}
	return &textRenderer{
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

func (tr *textRenderer) face(size float64) (font.Face, error) {
	if f, ok := tr.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(tr.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	tr.faces[size] = f
	return f, nil
}

// layout returns the lines of text with the block width and line height,
// excluding the shadow padding.
func (tr *textRenderer) layout(face font.Face, text string) ([]string, int, int) {
	lines := strings.Split(text, "\n")
	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	return lines, width, face.Metrics().Height.Ceil()
}

// measure returns the size of the drawn text at scale 1. Empty text
// measures zero and cannot be added to a container.
func (tr *textRenderer) measure(text string, style TextStyle) Size {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	face, err := tr.face(style.FontSize)
	if err != nil || text == "" {
		return Size{}
	}
	lines, width, lh := tr.layout(face, text)
	if width == 0 {
		return Size{}
	}
	pad := 2 * shadowPadding(style.Shadow)
	return Size{W: float64(width + pad), H: float64(len(lines)*lh + pad)}
}

// draw renders the text with the font scaled by scale. It returns nil
// when there is nothing to draw.
func (tr *textRenderer) draw(text string, style TextStyle, scale float64) *image.NRGBA {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	size := style.FontSize * scale
	if size < 1 || text == "" {
		return nil
	}
	face, err := tr.face(math.Round(size*4) / 4)
	if err != nil {
		return nil
	}
	lines, width, lh := tr.layout(face, text)
	if width == 0 {
		return nil
	}
	pad := int(math.Ceil(float64(shadowPadding(style.Shadow)) * scale))
	img := image.NewNRGBA(image.Rect(0, 0, width+2*pad, len(lines)*lh+2*pad))

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(style.Color),
		Face: face,
	}
	ascent := face.Metrics().Ascent
	for i, l := range lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(pad),
			Y: fixed.I(pad+i*lh) + ascent,
		}
		d.DrawString(l)
	}
	if style.Shadow <= 0 {
		return img
	}

	shadow := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{A: c.A}
	})
	shadow = imaging.Blur(shadow, float64(style.Shadow)*scale/2)
	draw.Draw(shadow, shadow.Bounds(), img, image.Point{}, draw.Over)
	return shadow
}

func shadowPadding(radius int) int {
	if radius <= 0 {
		return 0
	}
	return radius
}
