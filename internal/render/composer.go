// Package render turns one page entry into one single-page print document.
package render

import (
	"github.com/kozaktomas/photobook/internal/imagefmt"
	"github.com/kozaktomas/photobook/internal/layout"
)

// PageSpec is the physical page in millimeters.
type PageSpec struct {
	WidthMM  float64
	HeightMM float64
}

// PlacedImage is image data and where it goes on the page.
type PlacedImage struct {
	Data   []byte
	Format imagefmt.Format
	Rect   layout.Rect
}

// Metadata is the document information attached to every generated page.
type Metadata struct {
	Title    string `yaml:"title"`
	Subject  string `yaml:"subject"`
	Author   string `yaml:"author"`
	Creator  string `yaml:"creator"`
	Keywords string `yaml:"keywords"`
	// OutputCondition names the intended print condition. It is recorded
	// as descriptive metadata only; no color conversion is performed.
	OutputCondition   string `yaml:"output_condition"`
	OutputConditionID string `yaml:"output_condition_id"`
}

// DefaultMetadata returns the print-intent metadata used when nothing is configured.
func DefaultMetadata() Metadata {
	return Metadata{
		Title:             "CMYK Photobook Page",
		Subject:           "Print-ready CMYK document for professional printing",
		Author:            "Photobook Creator",
		Creator:           "Photobook Creator CMYK Edition",
		Keywords:          "CMYK, print, photobook, high-quality",
		OutputCondition:   "FOGRA27 (ISO Coated)",
		OutputConditionID: "FOGRA27",
	}
}

// Composer generates single-page documents.
type Composer interface {
	// ComposeImage emits a page with one image clipped to the page bounds.
	ComposeImage(page PageSpec, img PlacedImage, meta Metadata) ([]byte, error)
	// ComposeText emits a page holding only the given lines of text.
	ComposeText(page PageSpec, lines []string, meta Metadata) ([]byte, error)
}
