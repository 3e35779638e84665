package archive

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/render"
)

// Output file names.
const (
	ArchiveName = "photobook_pages.zip"
	ProofName   = "photobook_proof.pdf"
)

// ErrPacking marks a failure of the archive itself. It is the only export
// failure surfaced to the user; page failures become fallback pages.
var ErrPacking = errors.New("packing archive failed")

// Emitter renders one entry.
type Emitter interface {
	Emit(entry *book.Entry, pos int, s book.FormatSettings) (*render.Document, error)
}

// Page is the report line for one archive member.
type Page struct {
	*render.Document
	SourcePages int `json:"source_pages,omitempty"`
}

// Report summarizes one export.
type Report struct {
	Archive      string              `json:"archive"`
	Settings     book.FormatSettings `json:"settings"`
	Pages        []Page              `json:"pages"`
	Fallbacks    int                 `json:"fallbacks"`
	ArchiveBytes int64               `json:"archive_bytes"`
}

// PDFs returns the bytes of every PDF member, in order.
func (r *Report) PDFs() [][]byte {
	docs := make([][]byte, 0, len(r.Pages))
	for _, p := range r.Pages {
		if strings.HasSuffix(strings.ToLower(p.Name), ".pdf") {
			docs = append(docs, p.Data)
		}
	}
	return docs
}

// Progress is called after each member is written.
type Progress func(done, total int)

// Assembler drives the emitter over the entry list and packs the results.
type Assembler struct {
	emitter Emitter
	packer  Packer
}

// NewAssembler creates an assembler.
func NewAssembler(e Emitter, p Packer) *Assembler {
	return &Assembler{emitter: e, packer: p}
}

// Assemble emits every entry in order and writes the archive to w. Entries
// are processed one at a time so the output order is the display order.
func (a *Assembler) Assemble(w io.Writer, entries []*book.Entry, s book.FormatSettings, progress Progress) (*Report, error) {
	cw := &countingWriter{w: w}
	aw := a.packer.NewWriter(cw)
	report := &Report{
		Archive:  ArchiveName,
		Settings: s,
		Pages:    make([]Page, 0, len(entries)),
	}

	for i, entry := range entries {
		pos := i + 1
		doc, err := a.emitter.Emit(entry, pos, s)
		if err != nil {
			return nil, fmt.Errorf("emitting page %d: %w", pos, err)
		}

		page := Page{Document: doc}
		if doc.Kind == book.KindDocument {
			inspectPassthrough(&page)
		}
		if doc.Fallback {
			report.Fallbacks++
		}

		if err := aw.Add(doc.Name, doc.Data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPacking, err)
		}
		report.Pages = append(report.Pages, page)
		if progress != nil {
			progress(pos, len(entries))
		}
	}

	if err := aw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPacking, err)
	}
	report.ArchiveBytes = cw.n
	return report, nil
}

// inspectPassthrough records the page count of an existing PDF. Problems
// are warnings; the bytes are packed unchanged either way.
func inspectPassthrough(p *Page) {
	if !strings.HasSuffix(strings.ToLower(p.Name), ".pdf") {
		return
	}
	n, err := InspectPDF(p.Data)
	if err != nil {
		log.Printf("WARNING: %s (%s): %v", p.Name, p.Source, err)
		p.Warnings = append(p.Warnings, "could not validate document: "+err.Error())
		return
	}
	p.SourcePages = n
	if n != 1 {
		p.Warnings = append(p.Warnings, fmt.Sprintf("document has %d pages, expected 1", n))
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
