package analysis

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOf(t *testing.T, c color.NRGBA) Profile {
	t.Helper()
	p, err := Analyze(fill(4, 4, c))
	require.NoError(t, err)
	return p
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want Kind
	}{
		{"skin tone", color.NRGBA{200, 160, 130, 255}, Portrait},
		{"green field", color.NRGBA{60, 150, 70, 255}, Landscape},
		{"dark blue night", color.NRGBA{10, 20, 90, 255}, Night},
		{"flat gray", color.NRGBA{128, 128, 128, 255}, Portrait},
		{"dark gray", color.NRGBA{30, 30, 30, 255}, Unknown},
		{"all red", color.NRGBA{255, 0, 0, 255}, Unknown},
		{"dim green is not landscape", color.NRGBA{20, 90, 20, 255}, Night},
		{"blue sky", color.NRGBA{90, 140, 220, 255}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(profileOf(t, tt.c)))
		})
	}
}

func TestClassifyPortraitWinsOverLandscape(t *testing.T) {
	// Matches both the skin and the green rule.
	p := Profile{Mean: RGB{110, 120, 60}, Brightness: Mid}
	assert.True(t, mostlyGreen(p))
	assert.Equal(t, Portrait, Classify(p))
}

func TestClassifyZeroGreen(t *testing.T) {
	assert.Equal(t, Unknown, Classify(Profile{Mean: RGB{200, 0, 100}, Brightness: Mid}))
}

func TestRecipesCoverEveryKind(t *testing.T) {
	for _, k := range []Kind{Portrait, Landscape, Night, Unknown} {
		r, ok := Recipes[k]
		require.True(t, ok, k.String())
		assert.Equal(t, k.String(), r.Name)
		assert.NotEmpty(t, r.Steps)
	}
}

func TestSmartProcess(t *testing.T) {
	img := fill(8, 8, color.NRGBA{60, 150, 70, 255})
	res, err := SmartProcess(img)
	require.NoError(t, err)
	assert.Equal(t, Landscape, res.Kind)
	assert.Equal(t, img.Bounds(), res.Image.Bounds())
	assert.Equal(t, RGB{60, 150, 70}, res.Profile.Mean)

	_, err = SmartProcess(nil)
	assert.Error(t, err)
}
