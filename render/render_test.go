package render

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientCorners(t *testing.T) {
	img := Gradient(image.Pt(400, 300), color.RGBA{255, 100, 0, 255}, color.RGBA{0, 100, 255, 255})
	require.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())

	assert.Equal(t, color.NRGBA{255, 100, 0, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{0, 100, 255, 255}, img.NRGBAAt(399, 299))
	// Right edge: red is done, green has not moved, blue is half way.
	assert.Equal(t, color.NRGBA{0, 100, 127, 255}, img.NRGBAAt(399, 0))
}

func TestGradientSinglePixel(t *testing.T) {
	img := Gradient(image.Pt(1, 1), color.RGBA{10, 20, 30, 255}, color.RGBA{200, 200, 200, 255})
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, img.NRGBAAt(0, 0))
}

func TestCollage(t *testing.T) {
	imgs := []image.Image{
		BlockPattern(0, image.Pt(800, 600)),
		BlockPattern(1, image.Pt(800, 600)),
		image.NewNRGBA(image.Rect(0, 0, 100, 50)),
		BlockPattern(2, image.Pt(300, 600)),
	}
	out, err := Collage(imgs, 2, 2, DefaultCell)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 400), out.Bounds())

	// 800x600 fits as 200x150, so the bottom of the first cell stays white.
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(100, 190))
	// The transparent 100x50 image is pasted unscaled and flattened.
	assert.Equal(t, uint8(255), out.NRGBAAt(10, 210).A)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(150, 300))
	// 300x600 becomes 100x200 in the last cell.
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.NRGBAAt(350, 300))
}

func TestCollageNotEnough(t *testing.T) {
	_, err := Collage([]image.Image{BlockPattern(0, image.Pt(10, 10))}, 2, 2, DefaultCell)
	assert.True(t, errors.Is(err, ErrNotEnoughImages))

	_, err = Collage(nil, 0, 2, DefaultCell)
	assert.Error(t, err)
}

func TestGenerativeArtSeeded(t *testing.T) {
	opts := DefaultArt
	opts.Seed = 7
	a := GenerativeArt(opts)
	b := GenerativeArt(opts)
	assert.Equal(t, image.Rect(0, 0, 800, 600), a.Bounds())
	assert.Equal(t, a.Pix, b.Pix)

	opts.Seed = 8
	assert.NotEqual(t, a.Pix, GenerativeArt(opts).Pix)

	opts.Palette = Harmonious
	c := GenerativeArt(opts)
	for i := 3; i < len(c.Pix); i += 4 {
		require.Equal(t, uint8(255), c.Pix[i])
	}
}

func TestGenerativeArtEmpty(t *testing.T) {
	img := GenerativeArt(ArtOptions{Size: image.Pt(20, 10)})
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(5, 5))
}

func TestBlockPattern(t *testing.T) {
	img := BlockPattern(1, image.Pt(800, 600))
	assert.Equal(t, color.NRGBA{100, 50, 30, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, img.NRGBAAt(10, 10), img.NRGBAAt(19, 19))
	assert.Equal(t, color.NRGBA{(20 + 100) % 255, (10 + 50) % 255, (30 + 30) % 255, 255}, img.NRGBAAt(25, 15))
}

func TestSamples(t *testing.T) {
	s := Samples(3, image.Pt(80, 60))
	require.Len(t, s, 7)
	assert.Equal(t, "photo1.jpg", s[0].Name)
	assert.Equal(t, "cat.jpg", s[6].Name)

	sun := Sunset(256, 1.15)
	assert.Equal(t, color.NRGBA{255, 215, 0, 255}, sun.NRGBAAt(128, 85))
	assert.Equal(t, uint8(255), sun.NRGBAAt(0, 255).R)

	cat := Cat(256)
	assert.Equal(t, color.NRGBA{100, 100, 100, 255}, cat.NRGBAAt(128, 170))
	assert.Equal(t, color.NRGBA{240, 248, 255, 255}, cat.NRGBAAt(5, 5))
}
