package watermark

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		baseW int
		mark  image.Point
		want  image.Point
	}{
		{600, image.Pt(200, 100), image.Pt(150, 75)},
		{800, image.Pt(200, 100), image.Pt(200, 100)},
		{603, image.Pt(200, 100), image.Pt(150, 75)},
		{20, image.Pt(3, 2), image.Pt(5, 3)},
		// 1.5 rounds up.
		{12, image.Pt(2, 1), image.Pt(3, 2)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaledSize(tt.baseW, tt.mark), "%d %v", tt.baseW, tt.mark)
	}
}

func TestParsePosition(t *testing.T) {
	assert.Equal(t, BottomRight, ParsePosition("bottom-right"))
	assert.Equal(t, Center, ParsePosition("CENTER"))
	assert.Equal(t, TopLeft, ParsePosition("top-left"))
	assert.Equal(t, TopLeft, ParsePosition("somewhere"))
	assert.Equal(t, "bottom-right", BottomRight.String())
}

func TestCompositePositions(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	red := color.NRGBA{255, 0, 0, 255}
	base := solid(600, 400, white)
	mark := solid(200, 100, red)

	tests := []struct {
		pos    Position
		origin image.Point
	}{
		{BottomRight, image.Pt(440, 315)},
		{Center, image.Pt(225, 162)},
		{TopLeft, image.Pt(10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.pos.String(), func(t *testing.T) {
			out, err := Composite(base, mark, tt.pos, 0.7)
			require.NoError(t, err)
			assert.Equal(t, base.Bounds(), out.Bounds())

			inside := out.NRGBAAt(tt.origin.X+75, tt.origin.Y+37)
			assert.InDelta(t, 255, inside.R, 1)
			assert.InDelta(t, 0, inside.G, 1)

			assert.Equal(t, white, out.NRGBAAt(tt.origin.X-1, tt.origin.Y-1))
			assert.Equal(t, white, out.NRGBAAt(tt.origin.X+150, tt.origin.Y+75))
		})
	}
	// Input untouched.
	assert.Equal(t, white, base.NRGBAAt(450, 320))
}

func TestCompositeFlattensAndIgnoresOpacity(t *testing.T) {
	base := solid(400, 200, color.NRGBA{10, 20, 30, 100})
	mark, err := Generate("42", "Ann Lee", DefaultSize)
	require.NoError(t, err)

	a, err := Composite(base, mark, BottomRight, 0.7)
	require.NoError(t, err)
	b, err := Composite(base, mark, BottomRight, 0.1)
	require.NoError(t, err)

	assert.Equal(t, a.Pix, b.Pix)
	for i := 3; i < len(a.Pix); i += 4 {
		require.Equal(t, uint8(255), a.Pix[i])
	}
}

func TestCompositeTooSmall(t *testing.T) {
	var iie *InvalidInputError
	_, err := Composite(solid(3, 3, color.NRGBA{A: 255}), solid(2, 1, color.NRGBA{A: 255}), TopLeft, 1)
	assert.True(t, errors.As(err, &iie))

	_, err = Composite(solid(30, 30, color.NRGBA{A: 255}), image.NewNRGBA(image.Rect(0, 0, 0, 0)), TopLeft, 1)
	assert.True(t, errors.As(err, &iie))
}
