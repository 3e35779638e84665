package archive

import (
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/imagefmt"
	"github.com/kozaktomas/photobook/internal/render"
)

// NewPipeline wires the fpdf composer, the emitter and the zip packer using
// the configured limits and metadata overrides.
func NewPipeline(cfg *config.Config) *Assembler {
	meta := render.DefaultMetadata()
	if cfg.PDF.Author != "" {
		meta.Author = cfg.PDF.Author
	}
	if cfg.PDF.Creator != "" {
		meta.Creator = cfg.PDF.Creator
	}

	emitter := render.NewEmitter(render.NewFPDFComposer(), imagefmt.StdDecoder{}, render.Options{
		WarnBytes: cfg.Photobook.PageWarnBytes(),
		LowResDPI: float64(cfg.Photobook.LowResDPI),
		Metadata:  meta,
	})
	return NewAssembler(emitter, ZipPacker{})
}
