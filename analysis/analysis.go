// Package analysis computes colour profiles of images and picks an
// enhancement recipe from them.
package analysis

import (
	"fmt"
	"image"
	"image/color"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/luinbytes/image-automator/imageio"
)

// RGB is an 8-bit colour triple.
type RGB struct {
	R, G, B uint8
}

// Hex formats c as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Temperature is the warm/cool bias of an image.
type Temperature int

const (
	Neutral Temperature = iota
	Warm
	Cool
)

func (t Temperature) String() string {
	switch t {
	case Warm:
		return "warm"
	case Cool:
		return "cool"
	}
	return "neutral"
}

// BrightnessLevel buckets the brightness score.
type BrightnessLevel int

const (
	Dark BrightnessLevel = iota
	Mid
	Light
)

func (b BrightnessLevel) String() string {
	switch b {
	case Dark:
		return "dark"
	case Light:
		return "light"
	}
	return "mid"
}

// Profile is the colour analysis of one image.
type Profile struct {
	Dominant    RGB
	Mean        RGB
	WarmthIndex float64
	Temperature Temperature
	Score       float64
	Brightness  BrightnessLevel
}

func (p Profile) String() string {
	return fmt.Sprintf("dominant %s, mean %s, %s (%.2f), %s (%.2f)",
		p.Dominant.Hex(), p.Mean.Hex(), p.Temperature, p.WarmthIndex, p.Brightness, p.Score)
}

// Thresholds used by Analyze.
const (
	WarmThreshold  = 0.1
	DarkThreshold  = 0.3
	LightThreshold = 0.7
)

// MaxPixels bounds the images Analyze accepts. Unbounded images such as
// image.Uniform report huge bounds.
const MaxPixels = 1 << 28

// UnsupportedModeError is returned for images that cannot be read as three
// colour channels.
type UnsupportedModeError struct {
	Model string
}

func (e *UnsupportedModeError) Error() string {
	return "unsupported image mode: " + e.Model
}

// Analyze computes the colour profile of img. Alpha is ignored; only the
// colour channels of each pixel are counted.
//
// The dominant colour takes the most frequent value of each channel
// independently (lowest value wins a tie), so it need not be a colour that
// occurs in the image. Means are truncated to integers.
func Analyze(img image.Image) (Profile, error) {
	if img == nil {
		return Profile{}, &UnsupportedModeError{Model: "nil"}
	}
	b := img.Bounds()
	if b.Empty() {
		return Profile{}, &UnsupportedModeError{Model: fmt.Sprintf("empty %dx%d", b.Dx(), b.Dy())}
	}
	if int64(b.Dx())*int64(b.Dy()) > MaxPixels {
		return Profile{}, &UnsupportedModeError{Model: fmt.Sprintf("oversized %dx%d", b.Dx(), b.Dy())}
	}
	if _, ok := img.(*image.Alpha); ok {
		return Profile{}, &UnsupportedModeError{Model: "alpha"}
	}
	if _, ok := img.(*image.Alpha16); ok {
		return Profile{}, &UnsupportedModeError{Model: "alpha"}
	}

	var hist [3][256]uint64
	var sum [3]uint64
	// Straight (non-premultiplied) channels so alpha does not leak into colour.
	rgb := imaging.Clone(img)
	for i := 0; i < len(rgb.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := rgb.Pix[i+c]
			hist[c][v]++
			sum[c] += uint64(v)
		}
	}
	n := uint64(b.Dx()) * uint64(b.Dy())

	var p Profile
	dom := [3]uint8{}
	mean := [3]uint8{}
	for c := 0; c < 3; c++ {
		best := 0
		for v := 1; v < 256; v++ {
			if hist[c][v] > hist[c][best] {
				best = v
			}
		}
		dom[c] = uint8(best)
		mean[c] = uint8(sum[c] / n)
	}
	p.Dominant = RGB{dom[0], dom[1], dom[2]}
	p.Mean = RGB{mean[0], mean[1], mean[2]}

	r, g, bl := float64(mean[0]), float64(mean[1]), float64(mean[2])
	p.WarmthIndex = (r - bl) / 255
	switch {
	case p.WarmthIndex > WarmThreshold:
		p.Temperature = Warm
	case p.WarmthIndex < -WarmThreshold:
		p.Temperature = Cool
	default:
		p.Temperature = Neutral
	}

	p.Score = (r + g + bl) / 3 / 255
	switch {
	case p.Score < DarkThreshold:
		p.Brightness = Dark
	case p.Score < LightThreshold:
		p.Brightness = Mid
	default:
		p.Brightness = Light
	}
	return p, nil
}

// AnalyzeFile decodes and analyses the image at path.
func AnalyzeFile(path string) (Profile, error) {
	img, _, err := imageio.Open(path)
	if err != nil {
		return Profile{}, err
	}
	p, err := Analyze(img)
	return p, errors.Wrapf(err, "analyze %s", path)
}

// Prominent returns the k-means dominant colour of img. Unlike
// Profile.Dominant it is always a colour close to real pixels.
func Prominent(img image.Image) RGB {
	return FromColor(dominantcolor.Find(img))
}

// FromColor converts any colour to RGB, dropping alpha.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}
