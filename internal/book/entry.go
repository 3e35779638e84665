// Package book holds the photobook data model: page entries, format
// settings and upload intake.
package book

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kozaktomas/photobook/internal/imagefmt"
)

// Kind tags the two kinds of page content.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Content is the source of one page. It is either *Image or *Document.
type Content interface {
	Kind() Kind
	Bytes() []byte
}

// Image is a photograph that will be placed on a generated page.
type Image struct {
	data   []byte
	format imagefmt.Format

	once sync.Once
	info imagefmt.Info
	err  error
}

// NewImage wraps image bytes in the detected format.
func NewImage(data []byte, format imagefmt.Format) *Image {
	return &Image{data: data, format: format}
}

func (i *Image) Kind() Kind { return KindImage }
func (i *Image) Bytes() []byte { return i.data }
func (i *Image) Format() imagefmt.Format { return i.format }

// Dimensions decodes the image header on first use and caches the result,
// including a decode failure.
func (i *Image) Dimensions(dec imagefmt.Decoder) (imagefmt.Info, error) {
	i.once.Do(func() {
		i.info, i.err = dec.DecodeConfig(i.data)
	})
	return i.info, i.err
}

// Document is an existing PDF passed through to the output unchanged.
type Document struct {
	data []byte
	ext  string
}

// NewDocument wraps document bytes. ext is the output extension without a dot.
func NewDocument(data []byte, ext string) *Document {
	if ext == "" {
		ext = "pdf"
	}
	return &Document{data: data, ext: ext}
}

func (d *Document) Kind() Kind { return KindDocument }
func (d *Document) Bytes() []byte { return d.data }
func (d *Document) Ext() string { return d.ext }

// Entry is one unit of content occupying one output page. The ID is stable
// across reorders.
type Entry struct {
	ID      uuid.UUID
	Name    string
	Content Content
}

// NewEntry creates an entry with a fresh ID.
func NewEntry(name string, content Content) *Entry {
	return &Entry{
		ID:      uuid.New(),
		Name:    name,
		Content: content,
	}
}

// Size returns the content length in bytes.
func (e *Entry) Size() int {
	return len(e.Content.Bytes())
}
