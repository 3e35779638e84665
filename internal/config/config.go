package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/kozaktomas/photobook/internal/book"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

// ErrUnknownPreset is returned by Config.Preset for names not in presets.yaml.
var ErrUnknownPreset = errors.New("unknown format preset")

type Config struct {
	Photobook PhotobookConfig
	PDF       PDFConfig
	Web       WebConfig
	Presets   PresetsConfig
}

type PhotobookConfig struct {
	MaxUploadMB int // per-file upload limit (default 30)
	PageWarnMB  int // soft size ceiling per generated page (default 10)
	LowResDPI   int // effective DPI below which a page is flagged (default 200)
	ThumbWidth  int // preview bounds in pixels (default 300x400)
	ThumbHeight int
}

// MaxUploadBytes returns the upload limit in bytes.
func (c PhotobookConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// PageWarnBytes returns the per-page warning threshold in bytes.
func (c PhotobookConfig) PageWarnBytes() int64 {
	return int64(c.PageWarnMB) << 20
}

// PDFConfig overrides the metadata stamped on generated pages. Empty fields
// keep the built-in values.
type PDFConfig struct {
	Author  string
	Creator string
}

// WebConfig holds HTTP server settings that are not flags.
type WebConfig struct {
	AllowedOrigins string // comma-separated CORS origins beyond localhost
}

type PresetsConfig struct {
	Presets map[string]Preset `yaml:"presets"`
}

type Preset struct {
	Pages       int    `yaml:"pages"`
	Orientation string `yaml:"orientation"`
	Size        string `yaml:"size"`
	Binding     string `yaml:"binding"`
	Fit         string `yaml:"fit"`
}

// Settings converts the preset to validated format settings.
func (p Preset) Settings() (book.FormatSettings, error) {
	return book.DefaultSettings().Apply(book.FormatUpdate{
		Pages:       &p.Pages,
		Orientation: &p.Orientation,
		Size:        &p.Size,
		Binding:     &p.Binding,
		Fit:         &p.Fit,
	})
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var presets PresetsConfig
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		// Embedded file, so this only fails on a broken build
		panic("failed to unmarshal embedded presets.yaml: " + err.Error())
	}

	return &Config{
		Photobook: PhotobookConfig{
			MaxUploadMB: envInt("PHOTOBOOK_MAX_UPLOAD_MB", 30),
			PageWarnMB:  envInt("PHOTOBOOK_PAGE_WARN_MB", 10),
			LowResDPI:   envInt("PHOTOBOOK_LOW_RES_DPI", 200),
			ThumbWidth:  envInt("PHOTOBOOK_THUMB_WIDTH", 300),
			ThumbHeight: envInt("PHOTOBOOK_THUMB_HEIGHT", 400),
		},
		PDF: PDFConfig{
			Author:  os.Getenv("PHOTOBOOK_PDF_AUTHOR"),
			Creator: os.Getenv("PHOTOBOOK_PDF_CREATOR"),
		},
		Web: WebConfig{
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
		Presets: presets,
	}
}

// Preset returns the settings for a named preset.
func (c *Config) Preset(name string) (book.FormatSettings, error) {
	p, ok := c.Presets.Presets[name]
	if !ok {
		return book.FormatSettings{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	s, err := p.Settings()
	if err != nil {
		return book.FormatSettings{}, fmt.Errorf("preset %q: %w", name, err)
	}
	return s, nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets.Presets))
	for name := range c.Presets.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
