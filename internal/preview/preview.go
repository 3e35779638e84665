// Package preview produces thumbnail handles for image entries. A handle
// owns its decoded bytes until it is released.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/kozaktomas/photobook/internal/imagefmt"
)

// Default thumbnail bounds in pixels.
const (
	DefaultWidth  = 300
	DefaultHeight = 400
)

// ErrReleased is returned when reading a released handle.
var ErrReleased = errors.New("preview released")

// Generator scales images down to thumbnails.
type Generator struct {
	Width   int
	Height  int
	Decoder imagefmt.Decoder
}

// NewGenerator creates a generator bounded by width x height. Non-positive
// bounds select the defaults.
func NewGenerator(width, height int) Generator {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return Generator{Width: width, Height: height, Decoder: imagefmt.StdDecoder{}}
}

// Thumbnail fits the image inside the bounds and encodes it as JPEG.
func (g Generator) Thumbnail(src []byte) ([]byte, error) {
	img, _, err := g.Decoder.Decode(src)
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, g.Width, g.Height, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Handle is a lazily generated thumbnail.
type Handle struct {
	mu       sync.Mutex
	src      []byte
	gen      Generator
	thumb    []byte
	released bool
}

// NewHandle creates a handle over the source image. Nothing is decoded
// until Bytes is first called.
func NewHandle(src []byte, gen Generator) *Handle {
	return &Handle{src: src, gen: gen}
}

// Bytes returns the JPEG thumbnail, generating it on first use.
func (h *Handle) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil, ErrReleased
	}
	if h.thumb == nil {
		thumb, err := h.gen.Thumbnail(h.src)
		if err != nil {
			return nil, err
		}
		h.thumb = thumb
	}
	return h.thumb, nil
}

// Release drops the thumbnail and the reference to the source. Safe to
// call more than once.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	h.src = nil
	h.thumb = nil
}
