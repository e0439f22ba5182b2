// Package imop implements the Porter-Duff composition operations and the
// separable blend modes used when an element is composed over the
// elements below it. The image/draw package only offers source-over and
// source; this package fills the gap.
package imop

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/stevestencil/jot/utils"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

var compositeOps = []string{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
}

// InitOp returns a Composite using source-over.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// IsCompositeOp reports whether cop is a supported composition operation.
func IsCompositeOp(cop string) bool {
	return utils.Contains(compositeOps, cop)
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if !IsCompositeOp(cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// fractions returns the Porter-Duff coverage of source and backdrop.
func (op *Composite) fractions(as, ab float64) (fa, fb float64) {
	switch op.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 1, 1 - as
}

// Draw composes src over dst into bitmap. The three images are addressed
// relative to their own bounds origin and must have the same size; a nil
// bitmap allocates one. A nil blend uses the Normal mode.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) *Bitmap {
	sb, db := src.Bounds(), dst.Bounds()
	if bitmap == nil {
		bitmap = NewBitmap(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	}
	ob := bitmap.Img.Bounds()
	dx := utils.Min(sb.Dx(), utils.Min(db.Dx(), ob.Dx()))
	dy := utils.Min(sb.Dy(), utils.Min(db.Dy(), ob.Dy()))

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			s := src.NRGBAAt(sb.Min.X+x, sb.Min.Y+y)
			b := dst.NRGBAAt(db.Min.X+x, db.Min.Y+y)

			as, ab := float64(s.A)/255, float64(b.A)/255
			cs := [3]float64{float64(s.R) / 255, float64(s.G) / 255, float64(s.B) / 255}
			cb := [3]float64{float64(b.R) / 255, float64(b.G) / 255, float64(b.B) / 255}

			// The blended color replaces the source where the backdrop is opaque.
			if blend != nil {
				for i := range cs {
					cs[i] = (1-ab)*cs[i] + ab*blend.apply(cb[i], cs[i])
				}
			}

			fa, fb := op.fractions(as, ab)
			ao := as*fa + ab*fb

			var out color.NRGBA
			if ao > 0 {
				var co [3]float64
				for i := range co {
					co[i] = (as*fa*cs[i] + ab*fb*cb[i]) / ao
				}
				out = color.NRGBA{
					R: channel(co[0]),
					G: channel(co[1]),
					B: channel(co[2]),
					A: channel(ao),
				}
			}
			bitmap.Img.SetNRGBA(ob.Min.X+x, ob.Min.Y+y, out)
		}
	}
	return bitmap
}

func channel(v float64) uint8 {
	return uint8(math.Round(utils.Clamp(v, 0, 1) * 255))
}
