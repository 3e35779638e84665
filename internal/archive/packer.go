// Package archive assembles emitted page documents into the downloadable
// photobook archive.
package archive

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// ArchiveWriter collects named blobs into one archive.
type ArchiveWriter interface {
	Add(name string, data []byte) error
	Close() error
}

// Packer opens archive writers over a destination.
type Packer interface {
	NewWriter(w io.Writer) ArchiveWriter
}

// ZipPacker writes zip archives.
type ZipPacker struct {
	// Modified is stamped on every member. Zero uses the current time.
	Modified time.Time
}

// NewWriter starts a zip archive on w.
func (p ZipPacker) NewWriter(w io.Writer) ArchiveWriter {
	mod := p.Modified
	if mod.IsZero() {
		mod = time.Now()
	}
	return &zipWriter{zw: zip.NewWriter(w), modified: mod}
}

type zipWriter struct {
	zw       *zip.Writer
	modified time.Time
}

func (z *zipWriter) Add(name string, data []byte) error {
	f, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: z.modified,
	})
	if err != nil {
		return fmt.Errorf("creating member %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing member %s: %w", name, err)
	}
	return nil
}

func (z *zipWriter) Close() error {
	return z.zw.Close()
}
