package render

import (
	"fmt"
	"log"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/imagefmt"
	"github.com/kozaktomas/photobook/internal/layout"
)

// DefaultWarnBytes is the soft size ceiling for one generated page.
const DefaultWarnBytes = 10 << 20

// Options tunes an Emitter.
type Options struct {
	WarnBytes int64
	LowResDPI float64
	Metadata  Metadata
}

// Document is one emitted output member.
type Document struct {
	Position       int          `json:"position"`
	Name           string       `json:"name"`
	Source         string       `json:"source"`
	Kind           book.Kind    `json:"kind"`
	Data           []byte       `json:"-"`
	Bytes          int          `json:"bytes"`
	Fallback       bool         `json:"fallback"`
	FallbackReason string       `json:"fallback_reason,omitempty"`
	Placement      *layout.Rect `json:"placement,omitempty"`
	DPI            float64      `json:"dpi,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
}

// Emitter produces one document per entry. Failures while generating an
// image page are absorbed into a text-only fallback page.
type Emitter struct {
	composer Composer
	decoder  imagefmt.Decoder
	opts     Options
}

// NewEmitter creates an emitter. Zero option fields take their defaults.
func NewEmitter(c Composer, dec imagefmt.Decoder, opts Options) *Emitter {
	if opts.WarnBytes <= 0 {
		opts.WarnBytes = DefaultWarnBytes
	}
	if opts.LowResDPI <= 0 {
		opts.LowResDPI = layout.LowResDPIThreshold
	}
	if opts.Metadata == (Metadata{}) {
		opts.Metadata = DefaultMetadata()
	}
	return &Emitter{composer: c, decoder: dec, opts: opts}
}

// OutputName returns the deterministic member name for a 1-based position.
func OutputName(pos int, ext string) string {
	if pos == 1 {
		return fmt.Sprintf("%02d_cover.%s", pos, ext)
	}
	return fmt.Sprintf("%02d_page.%s", pos, ext)
}

// Emit renders entry at the 1-based position. Image failures always yield a
// fallback page; an error is returned only for unknown content.
func (e *Emitter) Emit(entry *book.Entry, pos int, s book.FormatSettings) (*Document, error) {
	doc := &Document{
		Position: pos,
		Source:   entry.Name,
		Kind:     entry.Content.Kind(),
	}

	switch c := entry.Content.(type) {
	case *book.Document:
		doc.Name = OutputName(pos, c.Ext())
		doc.Data = c.Bytes()
		doc.Bytes = len(doc.Data)
		return doc, nil
	case *book.Image:
		doc.Name = OutputName(pos, "pdf")
		if err := e.emitImage(doc, c, s); err != nil {
			log.Printf("WARNING: page %d (%s): %v; writing fallback page", pos, entry.Name, err)
			data, ferr := e.fallback(entry.Name, s)
			if ferr != nil {
				log.Printf("WARNING: page %d (%s): fallback page failed: %v; writing plain page", pos, entry.Name, ferr)
				pageW, pageH := s.PageDimensions()
				data = staticTextPage(PageSpec{WidthMM: pageW, HeightMM: pageH}, fallbackText(entry.Name))
				doc.Warnings = append(doc.Warnings, "fallback page written without metadata: "+ferr.Error())
			}
			doc.Data = data
			doc.Fallback = true
			doc.FallbackReason = err.Error()
			doc.Placement = nil
			doc.DPI = 0
		}
	default:
		return nil, fmt.Errorf("unsupported content %T", entry.Content)
	}

	doc.Bytes = len(doc.Data)
	if int64(doc.Bytes) > e.opts.WarnBytes {
		msg := fmt.Sprintf("page exceeds %dMB limit: %.1fMB", e.opts.WarnBytes>>20, float64(doc.Bytes)/1024/1024)
		log.Printf("WARNING: page %d (%s): %s", pos, entry.Name, msg)
		doc.Warnings = append(doc.Warnings, msg)
	}
	return doc, nil
}

func (e *Emitter) emitImage(doc *Document, img *book.Image, s book.FormatSettings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("composer panic: %v", r)
		}
	}()

	info, err := img.Dimensions(e.decoder)
	if err != nil {
		return err
	}
	pageW, pageH := s.PageDimensions()
	rect, err := layout.Place(pageW, pageH, layout.Aspect(info.Width, info.Height), s.Fit)
	if err != nil {
		return err
	}
	data, format, err := imagefmt.Normalize(e.decoder, img.Bytes(), info.Format)
	if err != nil {
		return err
	}

	out, err := e.composer.ComposeImage(
		PageSpec{WidthMM: pageW, HeightMM: pageH},
		PlacedImage{Data: data, Format: format, Rect: rect},
		e.opts.Metadata,
	)
	if err != nil {
		return err
	}

	doc.Data = out
	doc.Placement = &rect
	doc.DPI = layout.PlacementDPI(rect, info.Width)
	if doc.DPI < e.opts.LowResDPI {
		doc.Warnings = append(doc.Warnings,
			fmt.Sprintf("low resolution: %.0f DPI (recommended %.0f+)", doc.DPI, e.opts.LowResDPI))
	}
	for _, w := range layout.ValidatePlacement(rect, pageW, pageH, s.Fit) {
		doc.Warnings = append(doc.Warnings, w.Message)
	}
	return nil
}

// fallback emits a text page on the book's page size naming the source.
func (e *Emitter) fallback(source string, s book.FormatSettings) ([]byte, error) {
	pageW, pageH := s.PageDimensions()
	lines := []string{fallbackText(source)}
	return e.composer.ComposeText(PageSpec{WidthMM: pageW, HeightMM: pageH}, lines, e.opts.Metadata)
}

func fallbackText(source string) string {
	return "Error: failed to process " + source
}
