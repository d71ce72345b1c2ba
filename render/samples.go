package render

import (
	"fmt"
	"image"
	"image/color"
)

// Sample is a generated input image and the file name it is saved under.
type Sample struct {
	Name  string
	Image *image.NRGBA
}

// BlockPattern draws the i-th test photo: 10x10 blocks whose colour depends
// on the block position and on i.
func BlockPattern(i int, size image.Point) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		by := y - y%10
		for x := 0; x < size.X; x++ {
			bx := x - x%10
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8((bx + i*100) % 255),
				G: uint8((by + i*50) % 255),
				B: uint8((bx + by + i*30) % 255),
				A: 0xff,
			})
		}
	}
	return img
}

// Sunset draws a sky fading from blue to orange with a sun disc. brightness
// scales how far the fade goes.
func Sunset(size int, brightness float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	sunX, sunY, sunR := size/2, size/3, size/8

	for y := 0; y < size; y++ {
		p := float64(y) / float64(size) * brightness
		sky := color.NRGBA{
			R: lerp(135, 255, p),
			G: lerp(206, 100, p),
			B: lerp(235, 50, p),
			A: 0xff,
		}
		for x := 0; x < size; x++ {
			dx, dy := x-sunX, y-sunY
			if dx*dx+dy*dy < sunR*sunR {
				img.SetNRGBA(x, y, color.NRGBA{255, 215, 0, 0xff})
			} else {
				img.SetNRGBA(x, y, sky)
			}
		}
	}
	return img
}

// Cat draws a grey cat silhouette on a pale background.
func Cat(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	bg := color.NRGBA{240, 248, 255, 0xff}
	fur := color.NRGBA{100, 100, 100, 0xff}
	s := float64(size) / 256

	inEllipse := func(x, y int, cx, cy, rx, ry float64) bool {
		dx := (float64(x) - cx*s) / (rx * s)
		dy := (float64(y) - cy*s) / (ry * s)
		return dx*dx+dy*dy <= 1
	}
	inEar := func(x, y int, apexX float64) bool {
		// Triangle with apex (apexX, 65) and base from apexX-15 to apexX+15 at 90.
		fx, fy := float64(x)/s, float64(y)/s
		if fy < 65 || fy > 90 {
			return false
		}
		half := (fy - 65) / 25 * 15
		return fx >= apexX-half && fx <= apexX+half
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			switch {
			case inEllipse(x, y, 128, 170, 40, 30),
				inEllipse(x, y, 128, 100, 35, 30),
				inEar(x, y, 103),
				inEar(x, y, 153):
				img.SetNRGBA(x, y, fur)
			default:
				img.SetNRGBA(x, y, bg)
			}
		}
	}
	return img
}

// Samples returns n block-pattern photos of the given size plus a small set
// of sunset and cat pictures.
func Samples(n int, size image.Point) []Sample {
	out := make([]Sample, 0, n+4)
	for i := 0; i < n; i++ {
		out = append(out, Sample{Name: fmt.Sprintf("photo%d.jpg", i+1), Image: BlockPattern(i, size)})
	}
	out = append(out,
		Sample{Name: "sunset_original.jpg", Image: Sunset(256, 1.0)},
		Sample{Name: "sunset_bright.jpg", Image: Sunset(256, 1.15)},
		Sample{Name: "sunset_dark.jpg", Image: Sunset(256, 0.85)},
		Sample{Name: "cat.jpg", Image: Cat(256)},
	)
	return out
}
