package watermark

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndBaseColor(t *testing.T) {
	h := Hash("42")
	assert.Equal(t, "a1d0c6e83f027327d8461063f4ac58a6", h)
	assert.Equal(t, color.NRGBA{216, 63, 253, 180}, BaseColor(h))
	assert.Equal(t, color.NRGBA{185, 179, 58, 180}, BaseColor(Hash("12345")))
}

func TestBaseColorRange(t *testing.T) {
	for _, id := range []string{"", "1", "2", "user-9000", "ffffff"} {
		c := BaseColor(Hash(id))
		for _, v := range []uint8{c.R, c.G, c.B} {
			assert.GreaterOrEqual(t, v, uint8(55))
			assert.LessOrEqual(t, v, uint8(254))
		}
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ann Lee", "AL"},
		{"ann lee", "AL"},
		{"Anna Maria Smith", "AM"},
		{"X", "X"},
		{"bob", "BO"},
		{"  Ann   Lee  ", "AL"},
		{"Иван Петров", "ИП"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Initials(tt.in), tt.in)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate("42", "Ann Lee", image.Pt(200, 100))
	require.NoError(t, err)
	b, err := Generate("42", "Ann Lee", image.Pt(200, 100))
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 200, 100), a.Bounds())
	assert.Equal(t, a.Pix, b.Pix)
}

func TestGenerateUsernameOnlyChangesInitials(t *testing.T) {
	a, err := Generate("42", "Ann Lee", DefaultSize)
	require.NoError(t, err)
	same, err := Generate("42", "Adam Lowe", DefaultSize)
	require.NoError(t, err)
	other, err := Generate("42", "Zoe Quinn", DefaultSize)
	require.NoError(t, err)

	assert.Equal(t, a.Pix, same.Pix)
	assert.NotEqual(t, a.Pix, other.Pix)
	// Corners hold no text, so they match whatever the initials are.
	assert.Equal(t, a.NRGBAAt(10, 10), other.NRGBAAt(10, 10))
	assert.Equal(t, a.NRGBAAt(190, 90), other.NRGBAAt(190, 90))
}

func TestGenerateCells(t *testing.T) {
	h := Hash("42")
	img, err := Generate("42", "Ann Lee", DefaultSize)
	require.NoError(t, err)

	// Each cell takes the hex digit at (i/20+j/20)%32 and alpha 80+(i+j)%100.
	tests := []struct {
		name  string
		cell  image.Point
		at    image.Point
		shape int
		alpha uint8
	}{
		{"square", image.Pt(20, 0), image.Pt(30, 10), 1, 100},
		{"ellipse", image.Pt(60, 0), image.Pt(67, 7), 0, 140},
		{"triangle", image.Pt(120, 0), image.Pt(130, 12), 2, 100},
		{"triangle next cell", image.Pt(140, 0), image.Pt(150, 12), 2, 120},
		{"ellipse past wrap", image.Pt(160, 0), image.Pt(167, 7), 0, 140},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digit := h[(tt.cell.X/cellSize+tt.cell.Y/cellSize)%32]
			require.Equal(t, tt.shape, hexDigit(digit)%3)

			c := img.NRGBAAt(tt.at.X, tt.at.Y)
			assert.InDelta(t, tt.alpha, c.A, 1)
			assert.InDelta(t, 216, c.R, 6)
			assert.InDelta(t, 63, c.G, 6)
			assert.InDelta(t, 253, c.B, 6)
		})
	}

	// Gaps between shapes stay transparent.
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(19, 19).A)
	// The ellipse box ends at x+15.
	assert.Equal(t, uint8(0), img.NRGBAAt(76, 7).A)
}

func TestGenerateGuideLines(t *testing.T) {
	img, err := Generate("42", "Ann Lee", DefaultSize)
	require.NoError(t, err)

	for _, y := range []int{25, 50, 75} {
		c := img.NRGBAAt(19, y)
		assert.InDelta(t, guideAlpha, c.A, 1, "y=%d", y)
		assert.InDelta(t, 216, c.R, 8, "y=%d", y)
		assert.Equal(t, uint8(0), img.NRGBAAt(19, y-1).A, "y=%d", y-1)
		assert.Equal(t, uint8(0), img.NRGBAAt(19, y+1).A, "y=%d", y+1)
	}
}

func TestGenerateLabelOverOutline(t *testing.T) {
	img, err := Generate("42", "Ann Lee", DefaultSize)
	require.NoError(t, err)

	var label, outline bool
	for y := 30; y < 70; y++ {
		for x := 70; x < 130; x++ {
			c := img.NRGBAAt(x, y)
			if c.A >= 230 && c.R > 140 && c.B > 160 {
				label = true
			}
			if c.A >= 150 && c.R < 80 && c.G < 80 && c.B < 80 {
				outline = true
			}
		}
	}
	assert.True(t, label, "initials drawn on top in the base colour")
	assert.True(t, outline, "dark outline around the initials")
}

func TestGenerateDifferentUsers(t *testing.T) {
	a, err := Generate("12345", "Ann Lee", DefaultSize)
	require.NoError(t, err)
	b, err := Generate("67890", "Ann Lee", DefaultSize)
	require.NoError(t, err)
	assert.NotEqual(t, a.Pix, b.Pix)
}

func TestGenerateInvalid(t *testing.T) {
	var iie *InvalidInputError

	_, err := Generate("1", "", DefaultSize)
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "username", iie.Field)

	_, err = Generate("1", "   ", DefaultSize)
	assert.True(t, errors.As(err, &iie))

	_, err = Generate("1", "Ann", image.Pt(0, 100))
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "size", iie.Field)
}

func TestGenerateSingleLetter(t *testing.T) {
	img, err := Generate("1", "X", DefaultSize)
	require.NoError(t, err)
	assert.NotNil(t, img)
	assert.Equal(t, "X", Initials("X"))
}

func BenchmarkGenerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Generate("42", "Ann Lee", DefaultSize)
	}
}
