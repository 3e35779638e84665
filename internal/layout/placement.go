package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// FitMode reconciles an image's aspect ratio with the page rectangle.
type FitMode string

const (
	// FitCrop covers the whole page and lets the overflow run off the edges.
	FitCrop FitMode = "crop"
	// FitPad fits the image inside a margin box, centered.
	FitPad FitMode = "pad"
)

// PadMarginRatio is the margin reserved on every side in pad mode,
// as a fraction of the page width.
const PadMarginRatio = 0.05

// LowResDPIThreshold is the effective resolution below which a placement
// is reported as low-res.
const LowResDPIThreshold = 200.0

const mmPerInch = 25.4

// ErrDegenerateAspect is returned when the image aspect ratio is not a
// positive finite number (e.g. the image could not be decoded).
var ErrDegenerateAspect = errors.New("degenerate image aspect ratio")

// Rect is a placement rectangle in mm, origin at the top-left of the page.
type Rect struct {
	X, Y, W, H float64
}

// ParseFitMode parses a fit mode. "padding" is accepted as an alias of pad.
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(FitCrop):
		return FitCrop, nil
	case string(FitPad), "padding":
		return FitPad, nil
	default:
		return "", fmt.Errorf("unknown fit mode %q", s)
	}
}

// Valid reports whether the fit mode is crop or pad.
func (f FitMode) Valid() bool {
	return f == FitCrop || f == FitPad
}

// Aspect returns width/height for pixel dimensions, or 0 when either is not positive.
func Aspect(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return float64(width) / float64(height)
}

// Place computes where an image with the given aspect ratio lands on a page.
// Crop mode scales the image to cover the page and centers the overflow.
// Pad mode fits the image inside the page minus a 5% margin and centers it.
func Place(pageW, pageH, imageAspect float64, fit FitMode) (Rect, error) {
	if imageAspect <= 0 || math.IsNaN(imageAspect) || math.IsInf(imageAspect, 0) {
		return Rect{}, ErrDegenerateAspect
	}
	if pageW <= 0 || pageH <= 0 {
		return Rect{}, fmt.Errorf("invalid page dimensions %.2fx%.2f", pageW, pageH)
	}

	if fit == FitPad {
		return placePad(pageW, pageH, imageAspect), nil
	}
	return placeCrop(pageW, pageH, imageAspect), nil
}

// placeCrop is object-cover: the narrower axis fills the page exactly.
func placeCrop(pageW, pageH, imageAspect float64) Rect {
	pageAspect := pageW / pageH
	if imageAspect > pageAspect {
		h := pageH
		w := h * imageAspect
		return Rect{X: (pageW - w) / 2, Y: 0, W: w, H: h}
	}
	w := pageW
	h := w / imageAspect
	return Rect{X: 0, Y: (pageH - h) / 2, W: w, H: h}
}

// placePad is object-contain inside the margin box.
func placePad(pageW, pageH, imageAspect float64) Rect {
	margin := pageW * PadMarginRatio
	availW := pageW - 2*margin
	availH := pageH - 2*margin

	if imageAspect > availW/availH {
		w := availW
		h := w / imageAspect
		return Rect{X: margin, Y: margin + (availH-h)/2, W: w, H: h}
	}
	h := availH
	w := h * imageAspect
	return Rect{X: margin + (availW-w)/2, Y: margin, W: w, H: h}
}

// MarginBox returns the pad-mode content box for a page.
func MarginBox(pageW, pageH float64) Rect {
	margin := pageW * PadMarginRatio
	return Rect{X: margin, Y: margin, W: pageW - 2*margin, H: pageH - 2*margin}
}

// EffectiveDPI returns the print resolution of an image spanning pixels
// across mm, rounded to one decimal. Zero when either input is not positive.
func EffectiveDPI(pixels int, mm float64) float64 {
	if pixels <= 0 || mm <= 0 {
		return 0
	}
	dpi := float64(pixels) / mm * mmPerInch
	return math.Round(dpi*10) / 10
}

// PlacementDPI returns the effective DPI of an image of the given pixel size
// rendered into r. Width and height scale uniformly, so the width is used.
func PlacementDPI(r Rect, pixelW int) float64 {
	return EffectiveDPI(pixelW, r.W)
}
