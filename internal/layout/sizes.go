package layout

import (
	"fmt"
	"log"
	"strings"
)

// PageSize identifies one of the supported trim sizes.
type PageSize string

const (
	SizeA4       PageSize = "A4"
	SizeA5       PageSize = "A5"
	SizeB5       PageSize = "B5"
	SizeB6       PageSize = "B6"
	SizeSquare   PageSize = "square"
	SizePostcard PageSize = "postcard"
)

// Orientation of the page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// SizeInfo describes a page size in portrait orientation (mm).
type SizeInfo struct {
	Size     PageSize `json:"size"`
	Label    string   `json:"label"`
	WidthMM  float64  `json:"width_mm"`
	HeightMM float64  `json:"height_mm"`
}

// sizeTable holds portrait dimensions in mm. Order is the display order.
var sizeTable = []SizeInfo{
	{SizeA4, "A4 (210x297mm)", 210, 297},
	{SizeA5, "A5 (148x210mm)", 148, 210},
	{SizeB5, "B5 (182x257mm)", 182, 257},
	{SizeB6, "B6 (128x182mm)", 128, 182},
	{SizeSquare, "Square (210x210mm)", 210, 210},
	{SizePostcard, "Postcard (100x148mm)", 100, 148},
}

// PageSizes returns all supported sizes in display order.
func PageSizes() []SizeInfo {
	out := make([]SizeInfo, len(sizeTable))
	copy(out, sizeTable)
	return out
}

func lookupSize(size PageSize) (SizeInfo, bool) {
	for _, s := range sizeTable {
		if s.Size == size {
			return s, true
		}
	}
	return SizeInfo{}, false
}

// Dimensions returns the page width and height in mm for a size and orientation.
// Landscape swaps the axes, except for square which is orientation-invariant.
//
// Unknown sizes fail closed to A4: the caller still gets a printable page, and
// the substitution is logged so a bad setting never passes unnoticed.
func Dimensions(size PageSize, orientation Orientation) (w, h float64) {
	info, ok := lookupSize(size)
	if !ok {
		log.Printf("WARNING: unknown page size %q, falling back to A4", size)
		info, _ = lookupSize(SizeA4)
	}
	w, h = info.WidthMM, info.HeightMM
	if orientation == Landscape && info.Size != SizeSquare {
		w, h = h, w
	}
	return w, h
}

// ParsePageSize parses a page size name case-insensitively.
func ParsePageSize(s string) (PageSize, error) {
	for _, info := range sizeTable {
		if strings.EqualFold(string(info.Size), strings.TrimSpace(s)) {
			return info.Size, nil
		}
	}
	return "", fmt.Errorf("unknown page size %q", s)
}

// ParseOrientation parses an orientation name case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Portrait):
		return Portrait, nil
	case string(Landscape):
		return Landscape, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// Valid reports whether the size is one of the supported sizes.
func (s PageSize) Valid() bool {
	_, ok := lookupSize(s)
	return ok
}

// Valid reports whether the orientation is portrait or landscape.
func (o Orientation) Valid() bool {
	return o == Portrait || o == Landscape
}
