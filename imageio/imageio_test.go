package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.jpg", JPEG},
		{"a.JPEG", JPEG},
		{"dir/b.png", PNG},
		{"c.webp", WebP},
		{"d.tiff", TIFF},
		{"e.bmp", BMP},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := FormatFromPath("notes.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestIsBatchInput(t *testing.T) {
	assert.True(t, IsBatchInput("x.JPG"))
	assert.True(t, IsBatchInput("x.png"))
	assert.False(t, IsBatchInput("x.webp"))
	assert.True(t, IsImageFile("x.webp"))
	assert.False(t, IsImageFile("x.txt"))
}

func TestEncodeDecodePNG(t *testing.T) {
	src := solid(4, 3, color.NRGBA{10, 20, 30, 255})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, PNG, SaveOptions{Optimize: true}))

	img, name, err := Decode(&buf, "mem")
	require.NoError(t, err)
	assert.Equal(t, "png", name)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	r, g, b, _ := img.At(2, 1).RGBA()
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestEncodeWebPUnsupported(t *testing.T) {
	err := Encode(&bytes.Buffer{}, solid(1, 1, color.NRGBA{A: 255}), WebP, DefaultSaveOptions)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDecodeCorrupt(t *testing.T) {
	_, _, err := Decode(strings.NewReader("definitely not an image"), "junk.png")
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "junk.png", de.Source)
	assert.Contains(t, err.Error(), "junk.png")
}

func TestOpenMissing(t *testing.T) {
	_, _, err := Open(filepath.Join(t.TempDir(), "missing.jpg"))
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.True(t, os.IsNotExist(de.Err))
}

func TestSaveCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.jpg")
	require.NoError(t, Save(solid(8, 8, color.NRGBA{200, 0, 0, 255}), path, SaveOptions{Quality: 85, Optimize: true}))

	img, name, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", name)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestDescribe(t *testing.T) {
	info := Describe(solid(5, 7, color.NRGBA{1, 2, 3, 255}), "png")
	assert.Equal(t, Info{Format: "PNG", Width: 5, Height: 7, Mode: "RGB"}, info)

	assert.Equal(t, "RGBA", Mode(solid(1, 1, color.NRGBA{1, 2, 3, 10})))
	assert.Equal(t, "L", Mode(image.NewGray(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, "P", Mode(image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black})))
}

func TestSaveOptionsQualityClamp(t *testing.T) {
	assert.Equal(t, 95, SaveOptions{}.quality())
	assert.Equal(t, 100, SaveOptions{Quality: 400}.quality())
	assert.Equal(t, 85, SaveOptions{Quality: 85}.quality())
}

func TestToRGB(t *testing.T) {
	out := ToRGB(solid(2, 2, color.NRGBA{10, 20, 30, 40}))
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, out.NRGBAAt(1, 1))
	assert.Equal(t, "RGB", Mode(out))
}
