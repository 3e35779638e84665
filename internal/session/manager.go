package session

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a session lives after creation.
	DefaultTTL = 24 * time.Hour
	// CleanupInterval is how often expired sessions are swept.
	CleanupInterval = 10 * time.Minute
)

// Manager owns the live sessions by ID.
type Manager struct {
	opts     Options
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
	mu       sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a manager and starts its cleanup loop. Call Stop to
// end the loop and close every session.
func NewManager(opts Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		opts:     opts,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go m.cleanupLoop(CleanupInterval)
	return m
}

// Create starts a new session.
func (m *Manager) Create() (*Session, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}

	s := New(m.opts)
	s.ID = base64.URLEncoding.EncodeToString(idBytes)
	s.CreatedAt = m.now()
	s.ExpiresAt = s.CreatedAt.Add(m.ttl)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a live session or nil. Expired sessions are removed.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.now().After(s.ExpiresAt) {
		m.Delete(id)
		return nil
	}
	return s
}

// Delete closes and removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes every expired session and returns how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

func (m *Manager) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("Removed %d expired sessions", n)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends the cleanup loop and closes all sessions.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.mu.Lock()
		sessions := m.sessions
		m.sessions = make(map[string]*Session)
		m.mu.Unlock()
		for _, s := range sessions {
			s.Close()
		}
	})
}
