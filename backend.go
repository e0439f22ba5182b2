package jot

import (
	"image"

	"github.com/stevestencil/jot/imop"
)

// Backend rasterizes elements and composes them into a canvas. The
// container never draws by itself; it only hands each element's content
// and transform to its backend.
type Backend interface {
	// Measure returns the untransformed size of an element's content.
	Measure(kind Kind, c Content) (Size, error)
	// Rasterize draws one element: its content is rotated about its
	// center, scaled, then centered on the translation.
	Rasterize(req RasterRequest) (Layer, error)
	// Compose draws base (which may be nil) and the layers in z-order,
	// bottom first, on a transparent canvas of the given size.
	Compose(size image.Point, base image.Image, layers []Layer) (*image.NRGBA, error)
}

// RasterRequest is everything a backend needs to draw one element.
type RasterRequest struct {
	ID      ElementID
	Kind    Kind
	Content Content
	Bounds  Size

	TranslationX float64
	TranslationY float64
	Scale        float64
	Rotation     float64
}

// Layer is a rasterized element positioned on the canvas.
type Layer struct {
	Image     *image.NRGBA
	Origin    image.Point
	Blend     string
	Composite string
}

// plain reports whether the layer composes with a normal source-over.
func (l Layer) plain() bool {
	return (l.Blend == "" || l.Blend == imop.Normal) &&
		(l.Composite == "" || l.Composite == imop.SrcOver)
}

// Empty reports whether the layer has nothing to draw.
func (l Layer) Empty() bool {
	return l.Image == nil || l.Image.Bounds().Empty()
}
