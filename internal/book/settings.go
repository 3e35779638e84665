package book

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/photobook/internal/layout"
	"github.com/kozaktomas/photobook/internal/spread"
)

// Page count bounds. Counts are always a multiple of PageStep.
const (
	MinPages = 4
	MaxPages = 48
	PageStep = 4
)

// ErrInvalidSettings wraps every FormatSettings validation failure.
var ErrInvalidSettings = errors.New("invalid format settings")

// FormatSettings describes the physical book.
type FormatSettings struct {
	Pages       int                `json:"pages" yaml:"pages"`
	Orientation layout.Orientation `json:"orientation" yaml:"orientation"`
	Size        layout.PageSize    `json:"size" yaml:"size"`
	Binding     spread.Binding     `json:"binding" yaml:"binding"`
	Fit         layout.FitMode     `json:"fit" yaml:"fit"`
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() FormatSettings {
	return FormatSettings{
		Pages:       8,
		Orientation: layout.Portrait,
		Size:        layout.SizeA4,
		Binding:     spread.BindLeft,
		Fit:         layout.FitCrop,
	}
}

// PageOptions lists the selectable page counts.
func PageOptions() []int {
	opts := make([]int, 0, MaxPages/PageStep)
	for n := MinPages; n <= MaxPages; n += PageStep {
		opts = append(opts, n)
	}
	return opts
}

// Validate checks every field.
func (s FormatSettings) Validate() error {
	if s.Pages < MinPages || s.Pages > MaxPages || s.Pages%PageStep != 0 {
		return fmt.Errorf("%w: pages must be a multiple of %d between %d and %d, got %d",
			ErrInvalidSettings, PageStep, MinPages, MaxPages, s.Pages)
	}
	if !s.Orientation.Valid() {
		return fmt.Errorf("%w: orientation %q", ErrInvalidSettings, s.Orientation)
	}
	if !s.Size.Valid() {
		return fmt.Errorf("%w: size %q", ErrInvalidSettings, s.Size)
	}
	if !s.Binding.Valid() {
		return fmt.Errorf("%w: binding %q", ErrInvalidSettings, s.Binding)
	}
	if !s.Fit.Valid() {
		return fmt.Errorf("%w: fit %q", ErrInvalidSettings, s.Fit)
	}
	return nil
}

// PageDimensions resolves the page size in millimeters.
func (s FormatSettings) PageDimensions() (w, h float64) {
	return layout.Dimensions(s.Size, s.Orientation)
}

// FormatUpdate is a partial settings edit. Nil fields are left unchanged.
type FormatUpdate struct {
	Pages       *int    `json:"pages,omitempty"`
	Orientation *string `json:"orientation,omitempty"`
	Size        *string `json:"size,omitempty"`
	Binding     *string `json:"binding,omitempty"`
	Fit         *string `json:"fit,omitempty"`
}

// Apply returns s with the update applied. s is not modified.
func (s FormatSettings) Apply(u FormatUpdate) (FormatSettings, error) {
	out := s
	if u.Pages != nil {
		out.Pages = *u.Pages
	}
	if u.Orientation != nil {
		o, err := layout.ParseOrientation(*u.Orientation)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		out.Orientation = o
	}
	if u.Size != nil {
		size, err := layout.ParsePageSize(*u.Size)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		out.Size = size
	}
	if u.Binding != nil {
		b, err := spread.ParseBinding(*u.Binding)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		out.Binding = b
	}
	if u.Fit != nil {
		f, err := layout.ParseFitMode(*u.Fit)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
		out.Fit = f
	}
	if err := out.Validate(); err != nil {
		return s, err
	}
	return out, nil
}
