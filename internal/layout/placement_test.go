package layout

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

const eps = 1e-9

var testAspects = []float64{0.1, 0.33, 0.5, 0.6667, 0.75, 1, 1.333, 1.5, 1.7778, 2.4, 10}

func TestPlace_CropCoversPageAndIsCentered(t *testing.T) {
	for _, info := range PageSizes() {
		for _, o := range []Orientation{Portrait, Landscape} {
			pw, ph := Dimensions(info.Size, o)
			for _, aspect := range testAspects {
				name := fmt.Sprintf("%s_%s_%.2f", info.Size, o, aspect)
				t.Run(name, func(t *testing.T) {
					r, err := Place(pw, ph, aspect, FitCrop)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if r.W < pw-eps || r.H < ph-eps {
						t.Errorf("rect %.4fx%.4f does not cover page %.0fx%.0f", r.W, r.H, pw, ph)
					}
					if math.Abs(r.W-pw) > eps && math.Abs(r.H-ph) > eps {
						t.Errorf("expected equality on at least one axis, got %.4fx%.4f for page %.0fx%.0f", r.W, r.H, pw, ph)
					}
					if r.X > eps || r.Y > eps {
						t.Errorf("crop overflow must be symmetric around the page, origin (%.4f, %.4f)", r.X, r.Y)
					}
					if math.Abs(r.X-(pw-r.W)/2) > eps || math.Abs(r.Y-(ph-r.H)/2) > eps {
						t.Errorf("rect not centered: (%.4f, %.4f) size %.4fx%.4f", r.X, r.Y, r.W, r.H)
					}
					if math.Abs(r.W/r.H-aspect) > 1e-6 {
						t.Errorf("aspect not preserved: %.6f vs %.6f", r.W/r.H, aspect)
					}
				})
			}
		}
	}
}

func TestPlace_PadStaysInsideMarginBox(t *testing.T) {
	for _, info := range PageSizes() {
		for _, o := range []Orientation{Portrait, Landscape} {
			pw, ph := Dimensions(info.Size, o)
			box := MarginBox(pw, ph)
			for _, aspect := range testAspects {
				name := fmt.Sprintf("%s_%s_%.2f", info.Size, o, aspect)
				t.Run(name, func(t *testing.T) {
					r, err := Place(pw, ph, aspect, FitPad)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if r.X < box.X-eps || r.Y < box.Y-eps {
						t.Errorf("origin (%.4f, %.4f) inside margin %.4f", r.X, r.Y, box.X)
					}
					if r.X+r.W > box.X+box.W+eps || r.Y+r.H > box.Y+box.H+eps {
						t.Errorf("far edge (%.4f, %.4f) outside box", r.X+r.W, r.Y+r.H)
					}
					// Centered on both axes within the margin box.
					if math.Abs((r.X-box.X)-(box.X+box.W-r.X-r.W)) > 1e-6 {
						t.Errorf("not horizontally centered: %+v in %+v", r, box)
					}
					if math.Abs((r.Y-box.Y)-(box.Y+box.H-r.Y-r.H)) > 1e-6 {
						t.Errorf("not vertically centered: %+v in %+v", r, box)
					}
					if len(ValidatePlacement(r, pw, ph, FitPad)) != 0 {
						t.Errorf("validation flagged a pad placement: %v", ValidatePlacement(r, pw, ph, FitPad))
					}
				})
			}
		}
	}
}

func TestPlace_CropExactValues(t *testing.T) {
	// A4 portrait, 3:2 landscape photo: height fills, width overflows.
	r, err := Place(210, 297, 1.5, FitCrop)
	if err != nil {
		t.Fatal(err)
	}
	want := Rect{X: (210 - 445.5) / 2, Y: 0, W: 445.5, H: 297}
	if math.Abs(r.X-want.X) > eps || r.Y != 0 || math.Abs(r.W-want.W) > eps || r.H != want.H {
		t.Errorf("expected %+v, got %+v", want, r)
	}

	// Tall image on square page: width fills, height overflows.
	r, err = Place(210, 210, 0.5, FitCrop)
	if err != nil {
		t.Fatal(err)
	}
	if r.X != 0 || r.W != 210 || math.Abs(r.H-420) > eps || math.Abs(r.Y+105) > eps {
		t.Errorf("unexpected square crop rect %+v", r)
	}
}

func TestPlace_PadExactValues(t *testing.T) {
	// A4 portrait: margin 10.5, box 189x276. Square image is width-limited.
	r, err := Place(210, 297, 1, FitPad)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r.X-10.5) > eps || math.Abs(r.W-189) > eps || math.Abs(r.H-189) > eps {
		t.Errorf("unexpected pad rect %+v", r)
	}
	if math.Abs(r.Y-(10.5+(276-189)/2)) > eps {
		t.Errorf("expected vertical centering, got Y=%.4f", r.Y)
	}
}

func TestPlace_DegenerateAspect(t *testing.T) {
	for _, aspect := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Place(210, 297, aspect, FitCrop); !errors.Is(err, ErrDegenerateAspect) {
			t.Errorf("aspect %v: expected ErrDegenerateAspect, got %v", aspect, err)
		}
	}
}

func TestPlace_InvalidPage(t *testing.T) {
	if _, err := Place(0, 297, 1, FitPad); err == nil {
		t.Error("expected error for zero page width")
	}
}

func TestParseFitMode(t *testing.T) {
	tests := map[string]FitMode{"crop": FitCrop, "PAD": FitPad, "padding": FitPad}
	for in, want := range tests {
		got, err := ParseFitMode(in)
		if err != nil || got != want {
			t.Errorf("ParseFitMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFitMode("stretch"); err == nil {
		t.Error("expected error for stretch")
	}
}

func TestAspect(t *testing.T) {
	if a := Aspect(300, 200); math.Abs(a-1.5) > eps {
		t.Errorf("expected 1.5, got %v", a)
	}
	if a := Aspect(0, 200); a != 0 {
		t.Errorf("expected 0 for zero width, got %v", a)
	}
}

func TestEffectiveDPI(t *testing.T) {
	// 2480 px across 210mm is 300 DPI.
	if dpi := EffectiveDPI(2480, 210); math.Abs(dpi-300) > 0.1 {
		t.Errorf("expected ~300 DPI, got %.1f", dpi)
	}
	if dpi := EffectiveDPI(0, 210); dpi != 0 {
		t.Errorf("expected 0 for no pixels, got %.1f", dpi)
	}
	r := Rect{W: 105}
	if dpi := PlacementDPI(r, 2480); math.Abs(dpi-599.9) > 0.2 {
		t.Errorf("expected ~600 DPI at half width, got %.1f", dpi)
	}
}

func TestValidatePlacement_FlagsBadRects(t *testing.T) {
	if w := ValidatePlacement(Rect{X: 0, Y: 0, W: 100, H: 100}, 210, 297, FitCrop); len(w) == 0 {
		t.Error("expected warning for crop rect that does not cover the page")
	}
	if w := ValidatePlacement(Rect{X: 0, Y: 0, W: 210, H: 297}, 210, 297, FitPad); len(w) == 0 {
		t.Error("expected warning for pad rect inside the margin")
	}
	if w := ValidatePlacement(Rect{}, 210, 297, FitPad); len(w) != 1 || w[0].Severity != "error" {
		t.Errorf("expected one error for empty rect, got %v", w)
	}
}
