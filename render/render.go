// Package render draws synthetic images: gradients, collages and seeded
// generative art.
package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ErrNotEnoughImages is returned by Collage when there are fewer images
// than cells.
var ErrNotEnoughImages = errors.New("not enough images for collage")

// DefaultCell is the collage cell size.
var DefaultCell = image.Pt(200, 200)

// Gradient blends start into end: red follows x, green follows y and blue
// follows the diagonal. A one pixel wide (or tall) image uses the start
// value along that axis.
func Gradient(size image.Point, start, end color.RGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		ry := ratio(y, size.Y)
		for x := 0; x < size.X; x++ {
			rx := ratio(x, size.X)
			rd := (rx + ry) / 2
			img.SetNRGBA(x, y, color.NRGBA{
				R: lerp(start.R, end.R, rx),
				G: lerp(start.G, end.G, ry),
				B: lerp(start.B, end.B, rd),
				A: 0xff,
			})
		}
	}
	return img
}

func ratio(v, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(v) / float64(n-1)
}

func lerp(a, b uint8, t float64) uint8 {
	v := float64(a)*(1-t) + float64(b)*t
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Collage lays out the first rows*cols images on a white canvas, row by row.
// Each image is shrunk to fit its cell keeping the aspect ratio and placed
// at the cell's top-left corner; smaller images are not enlarged.
func Collage(images []image.Image, rows, cols int, cell image.Point) (*image.NRGBA, error) {
	if rows <= 0 || cols <= 0 || cell.X <= 0 || cell.Y <= 0 {
		return nil, errors.Errorf("invalid collage layout %dx%d of %v", rows, cols, cell)
	}
	if len(images) < rows*cols {
		return nil, errors.Wrapf(ErrNotEnoughImages, "have %d, need %d", len(images), rows*cols)
	}

	canvas := imaging.New(cols*cell.X, rows*cell.Y, color.White)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			thumb := resize.Thumbnail(uint(cell.X), uint(cell.Y), images[i*cols+j], resize.Lanczos3)
			canvas = imaging.Paste(canvas, thumb, image.Pt(j*cell.X, i*cell.Y))
		}
	}
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xff
	}
	return canvas, nil
}
