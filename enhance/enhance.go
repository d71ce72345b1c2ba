// Package enhance applies enhancement recipes to images.
//
// Factors follow the usual enhancer convention: 1.0 leaves the image as is,
// values above 1 strengthen the effect and values below 1 weaken it.
package enhance

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
)

// Op is a single enhancement operation.
type Op int

const (
	Saturation Op = iota
	Contrast
	Sharpness
	Brightness
	Smooth
	Sharpen
)

func (o Op) String() string {
	switch o {
	case Saturation:
		return "saturation"
	case Contrast:
		return "contrast"
	case Sharpness:
		return "sharpness"
	case Brightness:
		return "brightness"
	case Smooth:
		return "smooth"
	case Sharpen:
		return "sharpen"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Adjustment is one step of a recipe. Factor is ignored by the fixed
// kernels (Smooth, Sharpen).
type Adjustment struct {
	Op     Op
	Factor float64
}

func (a Adjustment) String() string {
	if a.Op == Smooth || a.Op == Sharpen {
		return a.Op.String()
	}
	return fmt.Sprintf("%s %.2f", a.Op, a.Factor)
}

// Recipe is an ordered list of adjustments.
type Recipe struct {
	Name  string
	Steps []Adjustment
}

func (r Recipe) String() string {
	parts := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		parts[i] = s.String()
	}
	return r.Name + ": " + strings.Join(parts, ", ")
}

// 3x3 kernels, normalized by their sum.
var (
	smoothKernel  = []float32{1, 1, 1, 1, 5, 1, 1, 1, 1}
	sharpenKernel = []float32{-2, -2, -2, -2, 32, -2, -2, -2, -2}
)

// ComplexFilters is the heavy batch workload: sharpen, smooth, then a
// contrast and colour boost.
var ComplexFilters = Recipe{
	Name: "complex",
	Steps: []Adjustment{
		{Op: Sharpen},
		{Op: Smooth},
		{Op: Contrast, Factor: 1.2},
		{Op: Saturation, Factor: 1.1},
	},
}

// Apply runs every step of r on img in order. img is never modified.
func Apply(img image.Image, r Recipe) *image.NRGBA {
	out := imaging.Clone(img)
	for _, step := range r.Steps {
		out = step.Apply(out)
	}
	return out
}

// Apply runs a single adjustment.
func (a Adjustment) Apply(img image.Image) *image.NRGBA {
	pct := (a.Factor - 1) * 100
	switch a.Op {
	case Saturation:
		return run(img, gift.Saturation(float32(pct)))
	case Contrast:
		return imaging.AdjustContrast(img, pct)
	case Brightness:
		f := a.Factor
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{
				R: scale(c.R, f),
				G: scale(c.G, f),
				B: scale(c.B, f),
				A: c.A,
			}
		})
	case Sharpness:
		if a.Factor <= 1 {
			return imaging.Clone(img)
		}
		return run(img, gift.UnsharpMask(1, float32(a.Factor-1), 0))
	case Smooth:
		return run(img, gift.Convolution(smoothKernel, true, false, false, 0))
	case Sharpen:
		return run(img, gift.Convolution(sharpenKernel, true, false, false, 0))
	}
	return imaging.Clone(img)
}

func run(img image.Image, filters ...gift.Filter) *image.NRGBA {
	g := gift.New(filters...)
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

func scale(v uint8, f float64) uint8 {
	x := float64(v) * f
	switch {
	case x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}
