package archive

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/imagefmt"
	"github.com/kozaktomas/photobook/internal/render"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func testComposer() *render.FPDFComposer {
	return &render.FPDFComposer{Now: func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }}
}

func testEmitter() *render.Emitter {
	return render.NewEmitter(testComposer(), imagefmt.StdDecoder{}, render.Options{})
}

func existingPDF(t *testing.T) []byte {
	t.Helper()
	data, err := testComposer().ComposeText(render.PageSpec{WidthMM: 148, HeightMM: 210}, []string{"inserted page"}, render.DefaultMetadata())
	if err != nil {
		t.Fatalf("building fixture pdf: %v", err)
	}
	return data
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("reading zip: %v", err)
	}
	members := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		members[f.Name] = b
	}
	return members
}

func TestAssemble_CorruptEntryBecomesFallback(t *testing.T) {
	passthrough := existingPDF(t)
	entries := []*book.Entry{
		book.NewEntry("cover.jpg", book.NewImage(jpegBytes(t, 60, 80), imagefmt.JPEG)),
		book.NewEntry("broken.jpg", book.NewImage([]byte("not a jpeg at all"), imagefmt.JPEG)),
		book.NewEntry("insert.pdf", book.NewDocument(passthrough, "pdf")),
		book.NewEntry("last.jpg", book.NewImage(jpegBytes(t, 80, 60), imagefmt.JPEG)),
	}

	var progressCalls []int
	var buf bytes.Buffer
	a := NewAssembler(testEmitter(), ZipPacker{})
	report, err := a.Assemble(&buf, entries, book.DefaultSettings(), func(done, total int) {
		if total != 4 {
			t.Errorf("expected total 4, got %d", total)
		}
		progressCalls = append(progressCalls, done)
	})
	if err != nil {
		t.Fatalf("export should succeed: %v", err)
	}

	members := readZip(t, buf.Bytes())
	if len(members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(members))
	}
	want := []string{"01_cover.pdf", "02_page.pdf", "03_page.pdf", "04_page.pdf"}
	for i, p := range report.Pages {
		name := p.Name
		if name != want[i] {
			t.Errorf("member %d: expected %s, got %s", i, want[i], name)
		}
		if _, ok := members[name]; !ok {
			t.Errorf("member %s missing from archive", name)
		}
	}

	if report.Fallbacks != 1 || !report.Pages[1].Fallback {
		t.Errorf("expected only page 2 to be a fallback, got %d fallbacks", report.Fallbacks)
	}
	if !bytes.Equal(members["03_page.pdf"], passthrough) {
		t.Error("passthrough member is not byte-identical to the upload")
	}
	if report.Pages[2].SourcePages != 1 {
		t.Errorf("expected passthrough page count 1, got %d", report.Pages[2].SourcePages)
	}
	if len(progressCalls) != 4 || progressCalls[3] != 4 {
		t.Errorf("unexpected progress calls %v", progressCalls)
	}
	if report.ArchiveBytes != int64(buf.Len()) {
		t.Errorf("archive bytes %d, buffer %d", report.ArchiveBytes, buf.Len())
	}
}

type failingPacker struct{}

func (failingPacker) NewWriter(io.Writer) ArchiveWriter { return failingWriter{} }

type failingWriter struct{}

func (failingWriter) Add(string, []byte) error { return errors.New("disk full") }
func (failingWriter) Close() error { return nil }

type brokenSink struct{}

func (brokenSink) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestAssemble_PackingFailureSurfaces(t *testing.T) {
	entries := []*book.Entry{
		book.NewEntry("a.jpg", book.NewImage(jpegBytes(t, 16, 16), imagefmt.JPEG)),
	}

	_, err := NewAssembler(testEmitter(), failingPacker{}).Assemble(io.Discard, entries, book.DefaultSettings(), nil)
	if !errors.Is(err, ErrPacking) {
		t.Errorf("expected ErrPacking from failing packer, got %v", err)
	}

	_, err = NewAssembler(testEmitter(), ZipPacker{}).Assemble(brokenSink{}, entries, book.DefaultSettings(), nil)
	if !errors.Is(err, ErrPacking) {
		t.Errorf("expected ErrPacking from failing sink, got %v", err)
	}
}

func TestAssemble_Empty(t *testing.T) {
	var buf bytes.Buffer
	report, err := NewAssembler(testEmitter(), ZipPacker{}).Assemble(&buf, nil, book.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Pages) != 0 || len(readZip(t, buf.Bytes())) != 0 {
		t.Error("expected an empty archive")
	}
}

func TestInspectPDF_Garbage(t *testing.T) {
	if _, err := InspectPDF([]byte("%PDF-1.4 truncated")); err == nil {
		t.Error("expected validation error")
	}

	var buf bytes.Buffer
	entries := []*book.Entry{book.NewEntry("bad.pdf", book.NewDocument([]byte("%PDF-1.4 truncated"), "pdf"))}
	report, err := NewAssembler(testEmitter(), ZipPacker{}).Assemble(&buf, entries, book.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("invalid passthrough must not fail the export: %v", err)
	}
	if len(report.Pages[0].Warnings) == 0 {
		t.Error("expected a validation warning on the passthrough page")
	}
}

func TestMergeProof(t *testing.T) {
	docs := [][]byte{existingPDF(t), existingPDF(t), existingPDF(t)}
	var out bytes.Buffer
	if err := MergeProof(&out, docs); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	n, err := InspectPDF(out.Bytes())
	if err != nil {
		t.Fatalf("merged proof does not validate: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 pages in proof, got %d", n)
	}

	if err := MergeProof(&out, nil); err == nil {
		t.Error("expected error merging nothing")
	}
}

func TestNewPipeline_AppliesMetadataOverrides(t *testing.T) {
	cfg := config.Load()
	cfg.PDF.Author = "Studio Nord"

	var buf bytes.Buffer
	entry := book.NewEntry("one.jpg", book.NewImage(jpegBytes(t, 40, 40), imagefmt.JPEG))
	report, err := NewPipeline(cfg).Assemble(&buf, []*book.Entry{entry}, book.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !bytes.Contains(report.Pages[0].Data, []byte("Studio Nord")) {
		t.Error("expected configured author in page metadata")
	}
}

// brokenComposer fails every page, including fallback text pages.
type brokenComposer struct{}

func (brokenComposer) ComposeImage(render.PageSpec, render.PlacedImage, render.Metadata) ([]byte, error) {
	return nil, errors.New("embed failed")
}

func (brokenComposer) ComposeText(render.PageSpec, []string, render.Metadata) ([]byte, error) {
	return nil, errors.New("no fonts")
}

func TestAssemble_BrokenComposerStillExports(t *testing.T) {
	e := render.NewEmitter(brokenComposer{}, imagefmt.StdDecoder{}, render.Options{})
	entries := []*book.Entry{
		book.NewEntry("a.jpg", book.NewImage(jpegBytes(t, 40, 30), imagefmt.JPEG)),
		book.NewEntry("b.jpg", book.NewImage(jpegBytes(t, 40, 30), imagefmt.JPEG)),
	}

	var buf bytes.Buffer
	report, err := NewAssembler(e, ZipPacker{}).Assemble(&buf, entries, book.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("composer failures must not end the export: %v", err)
	}
	if report.Fallbacks != 2 {
		t.Errorf("expected 2 fallbacks, got %d", report.Fallbacks)
	}

	members := readZip(t, buf.Bytes())
	for _, name := range []string{"01_cover.pdf", "02_page.pdf"} {
		n, err := InspectPDF(members[name])
		if err != nil {
			t.Fatalf("%s is not a valid PDF: %v", name, err)
		}
		if n != 1 {
			t.Errorf("%s has %d pages, want 1", name, n)
		}
	}
}
