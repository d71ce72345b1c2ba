// Package watermark draws per-user watermark patterns and stamps them onto
// images.
//
// A pattern is derived from the MD5 of the user id: the first three bytes of
// the hex digest pick the colour and every hex digit picks the shape of a
// grid cell. The same id and size always produce the same pixels; the user
// name only changes the initials drawn in the middle.
package watermark

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultSize is the pattern size used when none is given.
var DefaultSize = image.Pt(200, 100)

const (
	cellSize     = 20
	fontSize     = 24
	baseAlpha    = 180
	labelAlpha   = 220
	outlineAlpha = 150
	guideAlpha   = 30
)

// InvalidInputError reports a bad argument to Generate or Composite.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Hash returns the 32 character hex MD5 digest of the user id.
func Hash(userID string) string {
	sum := md5.Sum([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// BaseColor derives the pattern colour from a hex digest. Each channel lands
// in [55, 254]; alpha is always 180.
func BaseColor(hash string) color.NRGBA {
	ch := func(i int) uint8 {
		v, _ := strconv.ParseUint(hash[i:i+2], 16, 8)
		return uint8(v%200 + 55)
	}
	return color.NRGBA{R: ch(0), G: ch(2), B: ch(4), A: baseAlpha}
}

// Initials returns the upper-cased first letters of the first two words of
// username. With fewer than two words it falls back to the first two
// characters of the name.
func Initials(username string) string {
	var out []rune
	for _, word := range strings.Fields(username) {
		r := []rune(word)
		out = append(out, unicode.ToUpper(r[0]))
		if len(out) == 2 {
			break
		}
	}
	if len(out) < 2 {
		r := []rune(strings.TrimSpace(username))
		if len(r) > 2 {
			r = r[:2]
		}
		out = []rune(strings.ToUpper(string(r)))
	}
	return string(out)
}

var (
	faceOnce sync.Once
	face     font.Face
)

// labelFace returns the font used for initials. Faces are not safe for
// concurrent use, so callers must hold faceMu while drawing.
func labelFace() font.Face {
	faceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err == nil {
			face, err = opentype.NewFace(f, &opentype.FaceOptions{
				Size:    fontSize,
				DPI:     72,
				Hinting: font.HintingFull,
			})
		}
		if err != nil {
			face = basicfont.Face7x13
		}
	})
	return face
}

var faceMu sync.Mutex

// Generate draws the watermark pattern for a user.
func Generate(userID, username string, size image.Point) (*image.NRGBA, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &InvalidInputError{Field: "username", Reason: "empty"}
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, &InvalidInputError{Field: "size", Reason: fmt.Sprintf("%dx%d", size.X, size.Y)}
	}

	h := Hash(userID)
	base := BaseColor(h)
	dc := gg.NewContext(size.X, size.Y)

	for i := 0; i < size.X; i += cellSize {
		for j := 0; j < size.Y; j += cellSize {
			alpha := 80 + (i+j)%100
			dc.SetRGBA255(int(base.R), int(base.G), int(base.B), alpha)
			drawCell(dc, float64(i), float64(j), hexDigit(h[(i/cellSize+j/cellSize)%32]))
		}
	}

	drawLabel(dc, Initials(username), size, base)

	dc.SetRGBA255(int(base.R), int(base.G), int(base.B), guideAlpha)
	dc.SetLineWidth(1)
	for k := 1; k <= 3; k++ {
		y := float64(size.Y*k/4) + 0.5
		dc.DrawLine(0, y, float64(size.X), y)
		dc.Stroke()
	}

	return imaging.Clone(dc.Image()), nil
}

func hexDigit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}
	return 0
}

// drawCell fills one grid cell with a circle, square or triangle.
func drawCell(dc *gg.Context, x, y float64, v int) {
	switch v % 3 {
	case 0:
		dc.DrawEllipse(x+7.5, y+7.5, 7.5, 7.5)
	case 1:
		dc.DrawRectangle(x+2, y+2, 16, 16)
	default:
		dc.MoveTo(x+cellSize/2, y+2)
		dc.LineTo(x+2, y+cellSize-3)
		dc.LineTo(x+cellSize-3, y+cellSize-3)
		dc.ClosePath()
	}
	dc.Fill()
}

// drawLabel centres the ink box of text on the canvas, stamps a dark outline
// around it and then draws the label itself.
func drawLabel(dc *gg.Context, text string, size image.Point, base color.NRGBA) {
	faceMu.Lock()
	defer faceMu.Unlock()

	f := labelFace()
	dc.SetFontFace(f)
	bounds, _ := font.BoundString(f, text)
	tw := (bounds.Max.X - bounds.Min.X).Ceil()
	th := (bounds.Max.Y - bounds.Min.Y).Ceil()
	x := float64((size.X-tw)/2) - fixedToFloat(bounds.Min.X)
	y := float64((size.Y-th)/2) - fixedToFloat(bounds.Min.Y)

	dc.SetRGBA255(0, 0, 0, outlineAlpha)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				dc.DrawString(text, x+float64(dx), y+float64(dy))
			}
		}
	}
	dc.SetRGBA255(int(base.R), int(base.G), int(base.B), labelAlpha)
	dc.DrawString(text, x, y)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
