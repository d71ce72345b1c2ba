// Package imageio decodes and encodes images for the rest of the tool.
//
// Decoding goes through imaging so JPEG EXIF orientation is honoured, with
// extra formats (WebP, BMP, TIFF) registered from golang.org/x/image.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is an image container format.
type Format int

const (
	JPEG Format = iota
	PNG
	GIF
	BMP
	TIFF
	WebP
)

var formatNames = map[Format]string{
	JPEG: "JPEG",
	PNG:  "PNG",
	GIF:  "GIF",
	BMP:  "BMP",
	TIFF: "TIFF",
	WebP: "WEBP",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return ".jpg"
	case PNG:
		return ".png"
	case GIF:
		return ".gif"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tif"
	case WebP:
		return ".webp"
	}
	return ""
}

var extFormats = map[string]Format{
	".jpg":  JPEG,
	".jpeg": JPEG,
	".png":  PNG,
	".gif":  GIF,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
	".webp": WebP,
}

// ErrUnsupportedFormat is returned for file names with an unknown extension
// and for encoding into a decode-only format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
}

// IsImageFile reports whether path has an extension this package can decode.
func IsImageFile(path string) bool {
	_, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsBatchInput reports whether path is picked up by batch processing
// (.jpg, .jpeg and .png only).
func IsBatchInput(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// DecodeError means an image could not be read or decoded.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return "decode image: " + e.Err.Error()
	}
	return fmt.Sprintf("decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads a full image from r. source is only used in error messages.
// The returned string is the registered format name ("jpeg", "png", ...).
func Decode(r io.Reader, source string) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", &DecodeError{Source: source, Err: err}
	}
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Source: source, Err: err}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", &DecodeError{Source: source, Err: err}
	}
	return img, name, nil
}

// Open decodes the image stored at path.
func Open(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &DecodeError{Source: path, Err: err}
	}
	defer f.Close()
	return Decode(f, path)
}

// SaveOptions controls encoder settings.
type SaveOptions struct {
	// Quality is the JPEG quality, 1-100. Zero means the default.
	Quality int
	// Optimize trades encoding speed for smaller files where the format allows.
	Optimize bool
}

// DefaultSaveOptions matches the quality used for regular outputs.
var DefaultSaveOptions = SaveOptions{Quality: 95}

func (o SaveOptions) quality() int {
	switch {
	case o.Quality <= 0:
		return DefaultSaveOptions.Quality
	case o.Quality > 100:
		return 100
	}
	return o.Quality
}

func (f Format) imaging() (imaging.Format, error) {
	switch f {
	case JPEG:
		return imaging.JPEG, nil
	case PNG:
		return imaging.PNG, nil
	case GIF:
		return imaging.GIF, nil
	case BMP:
		return imaging.BMP, nil
	case TIFF:
		return imaging.TIFF, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedFormat, "cannot encode %s", f)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opts SaveOptions) error {
	target, err := format.imaging()
	if err != nil {
		return err
	}
	encOpts := []imaging.EncodeOption{imaging.JPEGQuality(opts.quality())}
	if opts.Optimize {
		encOpts = append(encOpts, imaging.PNGCompressionLevel(png.BestCompression))
	}
	return errors.Wrapf(imaging.Encode(w, img, target, encOpts...), "encode %s", format)
}

// Save encodes img to path, creating parent directories. The format is
// taken from the extension.
func Save(img image.Image, path string, opts SaveOptions) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	if err := Encode(f, img, format, opts); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close output file")
}

// ToRGB returns an opaque copy of img. Colour values are kept as they are;
// only the alpha channel is dropped.
func ToRGB(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// Info is a short description of a decoded image.
type Info struct {
	Format string
	Width  int
	Height int
	Mode   string
}

func (i Info) String() string {
	return fmt.Sprintf("%s %dx%d %s", i.Format, i.Width, i.Height, i.Mode)
}

// Describe reports size and colour mode of img. format is the name returned
// by Decode.
func Describe(img image.Image, format string) Info {
	b := img.Bounds()
	return Info{
		Format: strings.ToUpper(format),
		Width:  b.Dx(),
		Height: b.Dy(),
		Mode:   Mode(img),
	}
}

// Mode names the colour layout of img: "L", "LA", "P", "CMYK", "RGB" or "RGBA".
func Mode(img image.Image) string {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return "L"
	case *image.Alpha, *image.Alpha16:
		return "LA"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	case *image.YCbCr:
		return "RGB"
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return "RGB"
		}
	}
	return "RGBA"
}
