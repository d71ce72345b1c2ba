// Package transform holds the basic geometric and tonal operations.
package transform

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrEmptyCrop is returned when a crop rectangle misses the image.
var ErrEmptyCrop = errors.New("crop rectangle does not intersect image")

// ResizeToWidth scales img to the given width keeping the aspect ratio.
func ResizeToWidth(img image.Image, width int) *image.NRGBA {
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// Rotate turns img counter-clockwise by degrees. The canvas grows to fit the
// rotated image and uncovered corners are black.
func Rotate(img image.Image, degrees float64) *image.NRGBA {
	return imaging.Rotate(img, degrees, color.Black)
}

// Grayscale drops colour information, keeping alpha.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// Crop cuts rect out of img. rect is clipped to the image bounds.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	if rect.Intersect(img.Bounds()).Empty() {
		return nil, errors.Wrapf(ErrEmptyCrop, "%v outside %v", rect, img.Bounds())
	}
	return imaging.Crop(img, rect), nil
}

// Set is the output of Basic.
type Set struct {
	Resized *image.NRGBA
	Rotated *image.NRGBA
	Gray    *image.NRGBA
	Cropped *image.NRGBA
}

// Named lists the outputs with their file names.
func (s Set) Named() map[string]image.Image {
	out := map[string]image.Image{
		"resized.jpg":   s.Resized,
		"rotated.jpg":   s.Rotated,
		"grayscale.jpg": s.Gray,
	}
	if s.Cropped != nil {
		out["cropped.jpg"] = s.Cropped
	}
	return out
}

// BasicCrop is the region cut out by Basic.
var BasicCrop = image.Rect(100, 100, 400, 400)

// Basic runs the standard set of operations: width 400, 45 degree rotation,
// grayscale and a crop of BasicCrop. Cropped is nil when the image is too
// small to contain any of BasicCrop.
func Basic(img image.Image) Set {
	s := Set{
		Resized: ResizeToWidth(img, 400),
		Rotated: Rotate(img, 45),
		Gray:    Grayscale(img),
	}
	if c, err := Crop(img, BasicCrop.Add(img.Bounds().Min)); err == nil {
		s.Cropped = c
	}
	return s
}
