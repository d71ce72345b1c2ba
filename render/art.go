package render

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette picks colours for generative art.
type Palette int

const (
	// RandomRGB draws every channel uniformly.
	RandomRGB Palette = iota
	// Harmonious keeps hues within 60 degrees of a random base hue.
	Harmonious
)

// ArtOptions controls GenerativeArt.
type ArtOptions struct {
	Size      image.Point
	Seed      int64
	Circles   int
	Lines     int
	LineWidth float64
	Palette   Palette
}

// DefaultArt is 800x600 with 50 circles and 10 lines.
var DefaultArt = ArtOptions{
	Size:      image.Pt(800, 600),
	Circles:   50,
	Lines:     10,
	LineWidth: 3,
}

// GenerativeArt paints random filled circles (radius 10 to 100) and then
// random straight lines on a white canvas. The same options always give the
// same picture.
func GenerativeArt(opts ArtOptions) *image.NRGBA {
	w, h := opts.Size.X, opts.Size.Y
	rng := rand.New(rand.NewSource(opts.Seed))
	pick := colourPicker(opts.Palette, rng)

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	for i := 0; i < opts.Circles; i++ {
		x := rng.Intn(w + 1)
		y := rng.Intn(h + 1)
		r := 10 + rng.Intn(91)
		dc.SetColor(pick())
		dc.DrawCircle(float64(x), float64(y), float64(r))
		dc.Fill()
	}

	dc.SetLineWidth(opts.LineWidth)
	for i := 0; i < opts.Lines; i++ {
		x1, y1 := rng.Intn(w+1), rng.Intn(h+1)
		x2, y2 := rng.Intn(w+1), rng.Intn(h+1)
		dc.SetColor(pick())
		dc.DrawLine(float64(x1), float64(y1), float64(x2), float64(y2))
		dc.Stroke()
	}
	return imaging.Clone(dc.Image())
}

func colourPicker(p Palette, rng *rand.Rand) func() color.Color {
	if p == Harmonious {
		base := rng.Float64() * 360
		return func() color.Color {
			hue := math.Mod(base+rng.Float64()*60-30+360, 360)
			return colorful.Hsv(hue, 0.45+rng.Float64()*0.5, 0.55+rng.Float64()*0.45).Clamped()
		}
	}
	return func() color.Color {
		return color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 0xff}
	}
}
