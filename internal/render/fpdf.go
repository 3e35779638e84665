package render

import (
	"bytes"
	"fmt"
	"time"

	"codeberg.org/go-pdf/fpdf"
)

const (
	imageAlias     = "page-image"
	fallbackFont   = "Helvetica"
	fallbackSizePt = 12
	fallbackLineMM = 7
)

// FPDFComposer generates pages with the fpdf library.
type FPDFComposer struct {
	// Now stamps the creation date. Nil uses time.Now.
	Now func() time.Time
}

// NewFPDFComposer creates a composer stamping documents with the current time.
func NewFPDFComposer() *FPDFComposer {
	return &FPDFComposer{}
}

func (c *FPDFComposer) newPage(page PageSpec, meta Metadata) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(false)

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	ts := now()
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)

	pdf.SetTitle(meta.Title, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	pdf.SetKeywords(meta.Keywords, true)
	pdf.SetXmpMetadata(xmpPacket(meta, ts))

	pdf.AddPage()
	return pdf
}

// ComposeImage places the image at its rectangle. Crop placements overflow
// the page, so drawing is clipped to the page box.
func (c *FPDFComposer) ComposeImage(page PageSpec, img PlacedImage, meta Metadata) ([]byte, error) {
	pdf := c.newPage(page, meta)

	opts := fpdf.ImageOptions{
		ImageType:             img.Format.PDFType(),
		AllowNegativePosition: true,
	}
	pdf.RegisterImageOptionsReader(imageAlias, opts, bytes.NewReader(img.Data))
	if pdf.Err() {
		return nil, fmt.Errorf("registering image: %w", pdf.Error())
	}

	r := img.Rect
	pdf.ClipRect(0, 0, page.WidthMM, page.HeightMM, false)
	pdf.ImageOptions(imageAlias, r.X, r.Y, r.W, r.H, false, opts, 0, "")
	pdf.ClipEnd()

	return output(pdf)
}

// ComposeText writes the lines in the core Helvetica font. Text is
// transliterated to the font's code page first.
func (c *FPDFComposer) ComposeText(page PageSpec, lines []string, meta Metadata) ([]byte, error) {
	pdf := c.newPage(page, meta)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	margin := page.WidthMM * 0.1
	pdf.SetFont(fallbackFont, "", fallbackSizePt)
	pdf.SetXY(margin, page.HeightMM/3)
	for _, line := range lines {
		pdf.SetX(margin)
		pdf.MultiCell(page.WidthMM-2*margin, fallbackLineMM, tr(Transliterate(line)), "", "L", false)
	}

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
