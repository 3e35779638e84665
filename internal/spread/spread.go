// Package spread maps a linear page list onto the two-page views of an open
// book: the cover alone, pairs of facing pages, and a lone back cover.
package spread

import (
	"fmt"
	"strings"
)

// Binding is the bound edge of the book, which decides reading direction.
type Binding string

const (
	// BindLeft reads left-to-right; the right-hand control advances.
	BindLeft Binding = "left"
	// BindRight reads right-to-left; the left-hand control advances.
	BindRight Binding = "right"
)

// ParseBinding parses a binding direction case-insensitively.
func ParseBinding(s string) (Binding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(BindLeft):
		return BindLeft, nil
	case string(BindRight):
		return BindRight, nil
	default:
		return "", fmt.Errorf("unknown binding %q", s)
	}
}

// Valid reports whether the binding is left or right.
func (b Binding) Valid() bool {
	return b == BindLeft || b == BindRight
}

// Kind classifies a spread.
type Kind string

const (
	KindCover     Kind = "cover"
	KindPair      Kind = "pair"
	KindBackCover Kind = "back_cover"
)

// Page is one logical page slot of a spread. Index may point past the end
// of the list, in which case Present is false and the slot renders empty.
type Page struct {
	Index   int  `json:"index"`
	Present bool `json:"present"`
}

// View is the set of pages shown at one cursor position.
type View struct {
	Spread int    `json:"spread"`
	Kind   Kind   `json:"kind"`
	Label  string `json:"label"`
	Pages  []Page `json:"pages"` // reading order, one or two entries
}

// MaxSpread returns ceil((n-1)/2), the last valid cursor for n pages.
func MaxSpread(n int) int {
	if n <= 1 {
		return 0
	}
	return n / 2 // ceil((n-1)/2) == floor(n/2) for n >= 1
}

// Total returns the number of spreads for n pages.
func Total(n int) int {
	return MaxSpread(n) + 1
}

// Clamp limits s to [0, MaxSpread(n)].
func Clamp(s, n int) int {
	if s < 0 {
		return 0
	}
	if m := MaxSpread(n); s > m {
		return m
	}
	return s
}

// ViewAt computes the view for cursor s over n pages. The cursor is clamped
// first, so out-of-range positions never produce an error.
func ViewAt(n, s int) View {
	s = Clamp(s, n)
	last := MaxSpread(n)

	if s == 0 {
		return View{
			Spread: 0,
			Kind:   KindCover,
			Label:  "cover",
			Pages:  []Page{{Index: 0, Present: n > 0}},
		}
	}

	// The final page has no facing partner when n-1 is even.
	if s == last && (n-1)%2 == 0 {
		return View{
			Spread: s,
			Kind:   KindBackCover,
			Label:  "back cover",
			Pages:  []Page{{Index: n - 1, Present: true}},
		}
	}

	first := (s-1)*2 + 1
	second := first + 1
	return View{
		Spread: s,
		Kind:   KindPair,
		Label:  fmt.Sprintf("page %d-%d", first+1, second+1),
		Pages: []Page{
			{Index: first, Present: first < n},
			{Index: second, Present: second < n},
		},
	}
}

// All returns every view for n pages, cover first.
func All(n int) []View {
	views := make([]View, 0, Total(n))
	for s := range Total(n) {
		views = append(views, ViewAt(n, s))
	}
	return views
}

// Sides returns the pages placed on the physical left and right halves of
// the spread. Left-bound books put the earlier page on the left; right-bound
// books mirror that. Single-page views occupy the side the reader opens to:
// the cover sits on the right for left binding and on the left for right
// binding. A missing side is returned with Index -1.
func (v View) Sides(b Binding) (left, right Page) {
	none := Page{Index: -1}
	if len(v.Pages) == 1 {
		p := v.Pages[0]
		switch {
		case v.Kind == KindCover && b == BindRight, v.Kind == KindBackCover && b == BindLeft:
			return p, none
		default:
			return none, p
		}
	}
	if b == BindRight {
		return v.Pages[1], v.Pages[0]
	}
	return v.Pages[0], v.Pages[1]
}
