package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

func pdfConfig() *model.Configuration {
	// pdfcpu writes a config directory under the user's home unless told not to.
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// InspectPDF validates a document and returns its page count.
func InspectPDF(data []byte) (int, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("validating pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return ctx.PageCount, nil
}

// MergeProof concatenates documents into one proof PDF written to w.
func MergeProof(w io.Writer, docs [][]byte) error {
	if len(docs) == 0 {
		return fmt.Errorf("no documents to merge")
	}
	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	if err := api.MergeRaw(readers, w, false, pdfConfig()); err != nil {
		return fmt.Errorf("merging proof: %w", err)
	}
	return nil
}
