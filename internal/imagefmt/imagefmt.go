// Package imagefmt identifies uploaded images and converts the formats the
// PDF generator cannot embed into ones it can.
package imagefmt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Format is the decoder name reported by the image package.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	WEBP Format = "webp"
)

// uprightJPEGQuality is used when a rotated JPEG has to be re-encoded.
const uprightJPEGQuality = 95

// ErrUnsupported is returned for data that decodes as none of the accepted formats.
var ErrUnsupported = errors.New("unsupported image format")

// Info holds the pixel dimensions of a decoded image as displayed, that is
// after EXIF orientation has been applied.
type Info struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      Format `json:"format"`
	Orientation int    `json:"orientation,omitempty"`
}

// Decoder reads image headers and pixels from raw bytes.
type Decoder interface {
	DecodeConfig(data []byte) (Info, error)
	Decode(data []byte) (image.Image, Format, error)
}

// StdDecoder decodes JPEG, PNG, GIF, BMP and WEBP.
type StdDecoder struct{}

// DecodeConfig reads only the image header. JPEG dimensions are swapped for
// orientations that rotate the picture by 90 degrees, matching Decode.
func (StdDecoder) DecodeConfig(data []byte) (Info, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decoding image header: %w", err)
	}
	f := Format(name)
	if !f.Accepted() {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	info := Info{Width: cfg.Width, Height: cfg.Height, Format: f, Orientation: 1}
	if f == JPEG {
		info.Orientation = JPEGOrientation(data)
		if swapsAxes(info.Orientation) {
			info.Width, info.Height = info.Height, info.Width
		}
	}
	return info, nil
}

// Decode reads the full image, applying EXIF orientation for JPEGs.
func (StdDecoder) Decode(data []byte) (image.Image, Format, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image header: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, Format(name), nil
}

// Accepted reports whether the format is one the intake accepts.
func (f Format) Accepted() bool {
	switch f {
	case JPEG, PNG, GIF, BMP, WEBP:
		return true
	}
	return false
}

// Embeddable reports whether the PDF generator can embed the format as-is.
func (f Format) Embeddable() bool {
	return f == JPEG || f == PNG || f == GIF
}

// PDFType returns the image type name the PDF generator expects.
func (f Format) PDFType() string {
	switch f {
	case JPEG:
		return "JPG"
	case GIF:
		return "GIF"
	default:
		return "PNG"
	}
}

// Normalize returns bytes the PDF generator can embed, upright. The PDF
// generator ignores EXIF, so JPEGs with an orientation other than 1 are
// decoded upright and re-encoded. Other embeddable formats are returned
// unchanged; BMP and WEBP are re-encoded as PNG.
func Normalize(dec Decoder, data []byte, f Format) ([]byte, Format, error) {
	if f == JPEG && JPEGOrientation(data) != 1 {
		img, _, err := dec.Decode(data)
		if err != nil {
			return nil, "", err
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(uprightJPEGQuality)); err != nil {
			return nil, "", fmt.Errorf("re-encoding rotated jpeg: %w", err)
		}
		return buf.Bytes(), JPEG, nil
	}
	if f.Embeddable() {
		return data, f, nil
	}
	img, _, err := dec.Decode(data)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("re-encoding %s as png: %w", f, err)
	}
	return buf.Bytes(), PNG, nil
}
