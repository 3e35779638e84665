package render

import (
	"bytes"
	"fmt"
	"strings"
)

const mmToPt = 72 / 25.4

// staticTextPage writes a one-page PDF with a single line of Helvetica text.
// It stands in for the fallback page when the composer itself fails, so it
// must not depend on the composer.
func staticTextPage(page PageSpec, line string) []byte {
	w, h := page.WidthMM*mmToPt, page.HeightMM*mmToPt
	content := fmt.Sprintf("BT /F1 12 Tf %.2f %.2f Td (%s) Tj ET", 0.05*w, h-0.1*h, pdfString(line))

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>", w, h),
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// pdfString reduces s to printable ASCII and escapes it for a literal string.
func pdfString(s string) string {
	var b strings.Builder
	for _, r := range Transliterate(s) {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r > 0x7E:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
