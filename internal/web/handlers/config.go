package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/layout"
	"github.com/kozaktomas/photobook/internal/spread"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse describes the choices a client can offer
type ConfigResponse struct {
	PageSizes          []layout.SizeInfo              `json:"page_sizes"`
	PageOptions        []int                          `json:"page_options"`
	Orientations       []layout.Orientation           `json:"orientations"`
	Bindings           []spread.Binding               `json:"bindings"`
	FitModes           []layout.FitMode               `json:"fit_modes"`
	Defaults           book.FormatSettings            `json:"defaults"`
	Presets            map[string]book.FormatSettings `json:"presets"`
	AcceptedExtensions []string                       `json:"accepted_extensions"`
	MaxUploadMB        int                            `json:"max_upload_mb"`
	PageWarnMB         int                            `json:"page_warn_mb"`
	LowResDPI          int                            `json:"low_res_dpi"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	presets := make(map[string]book.FormatSettings, len(h.config.Presets.Presets))
	for _, name := range h.config.PresetNames() {
		s, err := h.config.Preset(name)
		if err != nil {
			log.Printf("WARNING: skipping preset: %v", err)
			continue
		}
		presets[name] = s
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		PageSizes:          layout.PageSizes(),
		PageOptions:        book.PageOptions(),
		Orientations:       []layout.Orientation{layout.Portrait, layout.Landscape},
		Bindings:           []spread.Binding{spread.BindLeft, spread.BindRight},
		FitModes:           []layout.FitMode{layout.FitCrop, layout.FitPad},
		Defaults:           book.DefaultSettings(),
		Presets:            presets,
		AcceptedExtensions: book.AcceptedExtensions(),
		MaxUploadMB:        h.config.Photobook.MaxUploadMB,
		PageWarnMB:         h.config.Photobook.PageWarnMB,
		LowResDPI:          h.config.Photobook.LowResDPI,
	})
}
