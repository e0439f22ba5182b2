package jot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/stevestencil/jot/imop"
)

// RasterBackend is the default Backend. It draws with the imaging package
// and falls back to the imop compositor for layers using a blend mode.
type RasterBackend struct {
	text *textRenderer
}

// NewRasterBackend returns a backend drawing text with the Go Regular font.
func NewRasterBackend() (*RasterBackend, error) {
	tr, err := newTextRenderer()
	if err != nil {
		return nil, err
	}
	return &RasterBackend{text: tr}, nil
}

// Measure implements Backend.
func (b *RasterBackend) Measure(kind Kind, c Content) (Size, error) {
	switch kind {
	case KindImage:
		if c.Image == nil {
			return Size{}, fmt.Errorf("%w: missing image", ErrInvalidSize)
		}
		r := c.Image.Bounds()
		return Size{W: float64(r.Dx()), H: float64(r.Dy())}, nil
	case KindText:
		return b.text.measure(c.Text, c.Style), nil
	}
	return Size{}, fmt.Errorf("%w: element kind %v", ErrUnsupportedOperation, kind)
}

// Rasterize implements Backend.
func (b *RasterBackend) Rasterize(req RasterRequest) (Layer, error) {
	if req.Content.Blend != "" && !imop.IsBlendMode(req.Content.Blend) {
		return Layer{}, fmt.Errorf("%w: blend mode %q", ErrUnsupportedOperation, req.Content.Blend)
	}
	if req.Content.Composite != "" && !imop.IsCompositeOp(req.Content.Composite) {
		return Layer{}, fmt.Errorf("%w: composite operation %q", ErrUnsupportedOperation, req.Content.Composite)
	}
	if !finite(req.TranslationX, req.TranslationY, req.Rotation) || !validFactor(req.Scale) {
		return Layer{}, fmt.Errorf("%w: %v", ErrInvalidTransform, Transform{
			TranslationX: req.TranslationX,
			TranslationY: req.TranslationY,
			Scale:        req.Scale,
			Rotation:     req.Rotation,
		})
	}
	w := int(math.Round(req.Bounds.W * req.Scale))
	h := int(math.Round(req.Bounds.H * req.Scale))
	if w < 1 || h < 1 {
		return Layer{}, nil
	}

	var src *image.NRGBA
	switch req.Kind {
	case KindImage:
		if req.Content.Image == nil {
			return Layer{}, fmt.Errorf("%w: missing image", ErrInvalidSize)
		}
		src = imaging.Resize(req.Content.Image, w, h, imaging.Lanczos)
	case KindText:
		img := b.text.draw(req.Content.Text, req.Content.Style, req.Scale)
		if img == nil {
			return Layer{}, nil
		}
		src = img
		if r := src.Bounds(); r.Dx() != w || r.Dy() != h {
			src = imaging.Resize(src, w, h, imaging.Lanczos)
		}
	default:
		return Layer{}, fmt.Errorf("%w: element kind %v", ErrUnsupportedOperation, req.Kind)
	}

	// imaging rotates counter-clockwise, the transform rotates clockwise.
	// Rounding keeps quarter turns on imaging's lossless path.
	rad := math.Mod(req.Rotation, 2*math.Pi)
	if deg := math.Round(rad*180/math.Pi*1e6) / 1e6; math.Mod(deg, 360) != 0 {
		src = imaging.Rotate(src, -deg, color.Transparent)
	}

	size := src.Bounds().Size()
	origin := image.Pt(
		int(math.Round(req.TranslationX-float64(size.X)/2)),
		int(math.Round(req.TranslationY-float64(size.Y)/2)),
	)
	return Layer{
		Image:     src,
		Origin:    origin,
		Blend:     req.Content.Blend,
		Composite: req.Content.Composite,
	}, nil
}

// Compose implements Backend.
func (b *RasterBackend) Compose(size image.Point, base image.Image, layers []Layer) (*image.NRGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: canvas %v", ErrInvalidSize, size)
	}
	dst := imaging.New(size.X, size.Y, color.Transparent)
	if base != nil {
		dst = imaging.Overlay(dst, base, image.Point{}, 1)
	}
	for i, l := range layers {
		if l.Empty() {
			continue
		}
		if l.plain() {
			dst = imaging.Overlay(dst, l.Image, l.Origin, 1)
			continue
		}
		if err := blendLayer(dst, l); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return dst, nil
}

// blendLayer composes l with its blend mode and composite operation over
// the region of dst it covers.
func blendLayer(dst *image.NRGBA, l Layer) error {
	var blend *imop.Blend
	if l.Blend != "" {
		blend = imop.NewBlend()
		if err := blend.Set(l.Blend); err != nil {
			return err
		}
	}
	op := imop.InitOp()
	if l.Composite != "" {
		if err := op.Set(l.Composite); err != nil {
			return err
		}
	}
	area := l.Image.Bounds().Sub(l.Image.Bounds().Min).Add(l.Origin).Intersect(dst.Bounds())
	if area.Empty() {
		return nil
	}
	src := imaging.Crop(l.Image, area.Sub(l.Origin).Add(l.Image.Bounds().Min))
	backdrop := imaging.Crop(dst, area)

	bmp := op.Draw(nil, src, backdrop, blend)
	draw.Draw(dst, area, bmp.Img, image.Point{}, draw.Src)
	return nil
}
