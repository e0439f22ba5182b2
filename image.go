package jot

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/stevestencil/jot/utils"
	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned when encoding to an unknown file extension.
var ErrUnsupportedFormat = errors.New("jot: unsupported image format")

// DecodeImage opens an image file, honoring its EXIF orientation.
func DecodeImage(src string) (*image.NRGBA, error) {
	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%s is not an image file (%s)", src, ctype)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", src, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to *image.NRGBA with the min point at (0, 0).
func ToNRGBA(img image.Image) *image.NRGBA {
	if src, ok := img.(*image.NRGBA); ok && src.Rect.Min == (image.Point{}) {
		return src
	}
	return imaging.Clone(img)
}

// EncodeImage encodes img to w. The format is picked from name's
// extension; an empty name, or a writer that is not a file, gets a JPEG.
func EncodeImage(w io.Writer, name string, img image.Image) error {
	if f, ok := w.(*os.File); ok && name == "" {
		name = f.Name()
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// IsSupportedFormat reports whether EncodeImage can write a file named name.
func IsSupportedFormat(name string) bool {
	return utils.Contains([]string{".jpg", ".jpeg", ".png", ".bmp"}, strings.ToLower(filepath.Ext(name)))
}
