// Package session holds the interactive state of one photobook being put
// together: the ordered entries, format settings, wizard step and spread
// cursor.
package session

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/imagefmt"
	"github.com/kozaktomas/photobook/internal/preview"
	"github.com/kozaktomas/photobook/internal/spread"
)

var (
	ErrUnknownEntry     = errors.New("unknown entry")
	ErrCountMismatch    = errors.New("photo count does not match page count")
	ErrExportInProgress = errors.New("export already in progress")
	ErrNoPreview        = errors.New("entry has no preview")
	ErrInvalidOrder     = errors.New("reorder must list every entry exactly once")
	ErrPreviewFailed    = errors.New("preview could not be generated")
)

// Step is the wizard step.
type Step string

const (
	StepFormat  Step = "format"
	StepPhotos  Step = "photos"
	StepPreview Step = "preview"
)

// Options configures new sessions.
type Options struct {
	MaxUploadBytes int64
	ThumbWidth     int
	ThumbHeight    int
}

// Upload is one file offered to Add.
type Upload struct {
	Name   string
	Size   int64 // -1 when unknown
	Reader io.Reader
}

// AddResult reports the outcome of Add. Rejections never abort the batch.
type AddResult struct {
	Added      []EntryView      `json:"added"`
	Rejections []book.Rejection `json:"rejections,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// Session is safe for concurrent use; every action runs under its mutex.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	intake   *book.Intake
	previews preview.Generator
	decoder  imagefmt.Decoder

	mu        sync.Mutex
	entries   []*book.Entry
	handles   map[uuid.UUID]*preview.Handle
	settings  book.FormatSettings
	step      Step
	cursor    spread.Cursor
	exporting bool
	message   string
}

// New creates a session with default settings on the format step.
func New(opts Options) *Session {
	return &Session{
		CreatedAt: time.Now(),
		intake:    book.NewIntake(opts.MaxUploadBytes),
		previews:  preview.NewGenerator(opts.ThumbWidth, opts.ThumbHeight),
		decoder:   imagefmt.StdDecoder{},
		handles:   make(map[uuid.UUID]*preview.Handle),
		settings:  book.DefaultSettings(),
		step:      StepFormat,
	}
}

// Add runs every upload through intake and appends the accepted ones.
func (s *Session) Add(uploads []Upload) AddResult {
	var accepted []*book.Entry
	var result AddResult
	for _, u := range uploads {
		entry, rej := s.intake.Accept(u.Name, u.Size, u.Reader)
		if rej != nil {
			result.Rejections = append(result.Rejections, *rej)
			continue
		}
		accepted = append(accepted, entry)
	}
	result.Message = book.JoinRejections(result.Rejections)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = result.Message
	start := len(s.entries)
	s.entries = append(s.entries, accepted...)
	for i, e := range accepted {
		result.Added = append(result.Added, s.viewLocked(e, start+i+1))
	}
	s.cursor.Clamp(len(s.entries))
	return result
}

// Remove deletes an entry and releases its preview.
func (s *Session) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	s.entries = slices.Delete(s.entries, idx, idx+1)
	s.releaseLocked(id)
	s.cursor.Clamp(len(s.entries))
	return nil
}

// Move drops the active entry onto the position of the over entry, shifting
// the entries in between. Moving an entry onto itself is a no-op.
func (s *Session) Move(activeID, overID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexLocked(activeID)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, activeID)
	}
	to := s.indexLocked(overID)
	if to < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownEntry, overID)
	}
	if from == to {
		return nil
	}
	moved := s.entries[from]
	s.entries = slices.Delete(s.entries, from, from+1)
	s.entries = slices.Insert(s.entries, to, moved)
	return nil
}

// Reorder replaces the order with ids, which must be a permutation of the
// current entries.
func (s *Session) Reorder(ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(s.entries) {
		return fmt.Errorf("%w: got %d ids for %d entries", ErrInvalidOrder, len(ids), len(s.entries))
	}
	byID := make(map[uuid.UUID]*book.Entry, len(s.entries))
	for _, e := range s.entries {
		byID[e.ID] = e
	}
	ordered := make([]*book.Entry, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s unknown or repeated", ErrInvalidOrder, id)
		}
		delete(byID, id)
		ordered = append(ordered, e)
	}
	s.entries = ordered
	return nil
}

// Settings returns the current format settings.
func (s *Session) Settings() book.FormatSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetFormat replaces the settings wholesale.
func (s *Session) SetFormat(fs book.FormatSettings) error {
	if err := fs.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = fs
	return nil
}

// UpdateFormat applies a partial edit.
func (s *Session) UpdateFormat(u book.FormatUpdate) (book.FormatSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.settings.Apply(u)
	if err != nil {
		return s.settings, err
	}
	s.settings = updated
	return updated, nil
}

// Count compares the number of entries to the required page count.
type Count struct {
	Required int    `json:"required"`
	Current  int    `json:"current"`
	Valid    bool   `json:"valid"`
	Message  string `json:"message,omitempty"`
}

func countOf(current, required int) Count {
	c := Count{Required: required, Current: current, Valid: current == required}
	switch {
	case current < required:
		c.Message = fmt.Sprintf("need %d more", required-current)
	case current > required:
		c.Message = fmt.Sprintf("%d too many", current-required)
	}
	return c
}

// Count returns the current count status.
func (s *Session) Count() Count {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(len(s.entries), s.settings.Pages)
}

// Step returns the current wizard step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// NextStep advances the wizard. Leaving the photo step requires exactly as
// many entries as pages. Advancing from the preview step is a no-op.
func (s *Session) NextStep() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = ""

	switch s.step {
	case StepFormat:
		s.step = StepPhotos
	case StepPhotos:
		c := countOf(len(s.entries), s.settings.Pages)
		if !c.Valid {
			return s.step, fmt.Errorf("%w: %d of %d (%s)", ErrCountMismatch, c.Current, c.Required, c.Message)
		}
		s.step = StepPreview
		// The preview always opens on the cover.
		s.cursor.Reset()
	}
	return s.step, nil
}

// PrevStep goes back one step; a no-op on the format step.
func (s *Session) PrevStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = ""

	switch s.step {
	case StepPreview:
		s.step = StepPhotos
	case StepPhotos:
		s.step = StepFormat
	}
	return s.step
}

// Spread returns the view at the cursor.
func (s *Session) Spread() spread.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.View(len(s.entries))
}

// PressSpread applies a navigation control under the current binding.
func (s *Session) PressSpread(ctrl spread.Control) spread.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.cursor.Press(ctrl, s.settings.Binding, n)
	return s.cursor.View(n)
}

// Entries returns a copy of the ordered entry list.
func (s *Session) Entries() []*book.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Thumbnail returns the preview for an image entry, creating its handle on
// first use.
func (s *Session) Thumbnail(id uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	img, ok := s.entries[idx].Content.(*book.Image)
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoPreview
	}
	h, ok := s.handles[id]
	if !ok {
		h = preview.NewHandle(img.Bytes(), s.previews)
		s.handles[id] = h
	}
	s.mu.Unlock()

	data, err := h.Bytes()
	if err != nil && !errors.Is(err, preview.ErrReleased) {
		return nil, fmt.Errorf("%w: %w", ErrPreviewFailed, err)
	}
	return data, err
}

// LivePreviews returns the number of unreleased preview handles.
func (s *Session) LivePreviews() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// BeginExport marks an export as running and returns the inputs it should
// use. A second call before EndExport fails with ErrExportInProgress.
func (s *Session) BeginExport() ([]*book.Entry, book.FormatSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exporting {
		return nil, s.settings, ErrExportInProgress
	}
	s.exporting = true
	return slices.Clone(s.entries), s.settings, nil
}

// EndExport clears the export flag.
func (s *Session) EndExport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exporting = false
}

// Close releases every preview handle. The session must not be used after.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.handles {
		s.releaseLocked(id)
	}
}

func (s *Session) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(s.entries, func(e *book.Entry) bool { return e.ID == id })
}

func (s *Session) releaseLocked(id uuid.UUID) {
	if h, ok := s.handles[id]; ok {
		h.Release()
		delete(s.handles, id)
	}
}
