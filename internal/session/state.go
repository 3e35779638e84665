package session

import (
	"github.com/google/uuid"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/spread"
)

// EntryView is the client-facing description of an entry.
type EntryView struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Kind     book.Kind `json:"kind"`
	Bytes    int       `json:"bytes"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Preview  bool      `json:"preview"`
}

// State is a consistent snapshot of the session.
type State struct {
	ID           string              `json:"id,omitempty"`
	Step         Step                `json:"step"`
	Settings     book.FormatSettings `json:"settings"`
	Entries      []EntryView         `json:"entries"`
	Count        Count               `json:"count"`
	Spread       spread.View         `json:"spread"`
	TotalSpreads int                 `json:"total_spreads"`
	Exporting    bool                `json:"exporting"`
	Message      string              `json:"message,omitempty"`
}

// State snapshots the session under one lock.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	views := make([]EntryView, 0, n)
	for i, e := range s.entries {
		views = append(views, s.viewLocked(e, i+1))
	}
	return State{
		ID:           s.ID,
		Step:         s.step,
		Settings:     s.settings,
		Entries:      views,
		Count:        countOf(n, s.settings.Pages),
		Spread:       s.cursor.View(n),
		TotalSpreads: spread.Total(n),
		Exporting:    s.exporting,
		Message:      s.message,
	}
}

func (s *Session) viewLocked(e *book.Entry, pos int) EntryView {
	v := EntryView{
		ID:       e.ID,
		Position: pos,
		Name:     e.Name,
		Kind:     e.Content.Kind(),
		Bytes:    e.Size(),
	}
	if img, ok := e.Content.(*book.Image); ok {
		v.Preview = true
		if info, err := img.Dimensions(s.decoder); err == nil {
			v.Width, v.Height = info.Width, info.Height
		}
	}
	return v
}
