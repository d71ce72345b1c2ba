package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestBrightness(t *testing.T) {
	img := uniform(4, 4, color.NRGBA{100, 200, 10, 255})
	out := Adjustment{Op: Brightness, Factor: 1.3}.Apply(img)
	assert.Equal(t, color.NRGBA{130, 255, 13, 255}, out.NRGBAAt(1, 1))

	out = Adjustment{Op: Brightness, Factor: 0.5}.Apply(img)
	assert.Equal(t, color.NRGBA{50, 100, 5, 255}, out.NRGBAAt(0, 0))
}

func TestKernelsKeepUniformImages(t *testing.T) {
	c := color.NRGBA{90, 120, 150, 255}
	for _, op := range []Op{Smooth, Sharpen} {
		out := Adjustment{Op: op}.Apply(uniform(6, 6, c))
		require.Equal(t, image.Rect(0, 0, 6, 6), out.Bounds(), op.String())
		got := out.NRGBAAt(3, 3)
		assert.InDelta(t, c.R, got.R, 1, op.String())
		assert.InDelta(t, c.G, got.G, 1, op.String())
		assert.InDelta(t, c.B, got.B, 1, op.String())
	}
}

func TestSaturationGray(t *testing.T) {
	// No chroma, nothing to saturate.
	out := Adjustment{Op: Saturation, Factor: 1.3}.Apply(uniform(2, 2, color.NRGBA{128, 128, 128, 255}))
	got := out.NRGBAAt(0, 0)
	assert.InDelta(t, 128, got.R, 1)
	assert.InDelta(t, 128, got.B, 1)
}

func TestContrastSpreadsValues(t *testing.T) {
	img := uniform(2, 1, color.NRGBA{60, 60, 60, 255})
	img.SetNRGBA(1, 0, color.NRGBA{200, 200, 200, 255})
	out := Adjustment{Op: Contrast, Factor: 1.2}.Apply(img)
	assert.Less(t, out.NRGBAAt(0, 0).R, uint8(60))
	assert.Greater(t, out.NRGBAAt(1, 0).R, uint8(200))
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	img := uniform(5, 5, color.NRGBA{10, 20, 30, 255})
	img.SetNRGBA(2, 2, color.NRGBA{250, 240, 230, 255})
	before := append([]uint8(nil), img.Pix...)

	out := Apply(img, ComplexFilters)
	assert.Equal(t, before, img.Pix)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestRecipeString(t *testing.T) {
	r := Recipe{Name: "night", Steps: []Adjustment{{Op: Smooth}, {Op: Brightness, Factor: 1.3}}}
	assert.Equal(t, "night: smooth, brightness 1.30", r.String())
}
