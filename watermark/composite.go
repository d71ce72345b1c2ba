package watermark

import (
	"image"
	"image/draw"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Position anchors the watermark on the base image.
type Position int

const (
	TopLeft Position = iota
	BottomRight
	Center
)

const margin = 10

func (p Position) String() string {
	switch p {
	case BottomRight:
		return "bottom-right"
	case Center:
		return "center"
	}
	return "top-left"
}

// ParsePosition accepts "bottom-right" and "center"; anything else is
// top-left.
func ParsePosition(s string) Position {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bottom-right":
		return BottomRight
	case "center", "centre":
		return Center
	}
	return TopLeft
}

// ScaledSize returns the size mark is resized to when stamped on an image
// baseWidth pixels wide: a quarter of the width, height kept proportional.
func ScaledSize(baseWidth int, mark image.Point) image.Point {
	w := baseWidth / 4
	h := int(math.Round(float64(mark.Y) * float64(w) / float64(mark.X)))
	return image.Pt(w, h)
}

func anchor(pos Position, base, mark image.Point) image.Point {
	switch pos {
	case BottomRight:
		return image.Pt(base.X-mark.X-margin, base.Y-mark.Y-margin)
	case Center:
		return image.Pt((base.X-mark.X)/2, (base.Y-mark.Y)/2)
	}
	return image.Pt(margin, margin)
}

// Composite stamps mark onto a copy of base and returns an opaque image.
//
// opacity is accepted for callers that pass it but is not applied: the
// mark's own alpha controls the blend.
func Composite(base, mark image.Image, pos Position, opacity float64) (*image.NRGBA, error) {
	bs := base.Bounds().Size()
	ms := mark.Bounds().Size()
	if ms.X <= 0 || ms.Y <= 0 {
		return nil, &InvalidInputError{Field: "watermark", Reason: "empty image"}
	}
	size := ScaledSize(bs.X, ms)
	if size.X <= 0 || size.Y <= 0 {
		return nil, &InvalidInputError{Field: "base", Reason: "too small for a watermark"}
	}

	scaled := imaging.Resize(mark, size.X, size.Y, imaging.Lanczos)
	out := imaging.Clone(base)
	at := anchor(pos, bs, size)
	draw.Draw(out, image.Rectangle{Min: at, Max: at.Add(size)}, scaled, image.Point{}, draw.Over)

	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out, nil
}
