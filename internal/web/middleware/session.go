package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/session"
)

const devSecret = "photobook-dev-secret-change-in-production"

// SessionManager ties photobook sessions to signed cookies.
type SessionManager struct {
	secret []byte
	store  *session.Manager
}

// NewSessionManager creates a session manager over store. An empty secret
// selects a development default.
func NewSessionManager(secret string, store *session.Manager) *SessionManager {
	if secret == "" {
		secret = devSecret
	}
	return &SessionManager{
		secret: []byte(secret),
		store:  store,
	}
}

// CreateSession starts a new photobook session.
func (sm *SessionManager) CreateSession() (*session.Session, error) {
	return sm.store.Create()
}

// GetSession retrieves a live session by ID.
func (sm *SessionManager) GetSession(sessionID string) *session.Session {
	return sm.store.Get(sessionID)
}

// DeleteSession closes and removes a session.
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.store.Delete(sessionID)
}

// Stop ends the store's cleanup loop and closes every session.
func (sm *SessionManager) Stop() {
	sm.store.Stop()
}

// SetSessionCookie sets the session cookie on the response
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, s *session.Session) {
	cookieValue := s.ID + "." + sm.signData(s.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from the signed cookie, or
// from a "Bearer <id>.<signature>" Authorization header for API clients.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *session.Session {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
		if s := sm.lookupSigned(cookie.Value); s != nil {
			return s
		}
	}

	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return sm.lookupSigned(token)
	}
	return nil
}

// Token returns the signed value clients may send as a bearer token.
func (sm *SessionManager) Token(s *session.Session) string {
	return s.ID + "." + sm.signData(s.ID)
}

func (sm *SessionManager) lookupSigned(value string) *session.Session {
	sessionID, signature, ok := strings.Cut(value, ".")
	if !ok || !sm.verifySignature(sessionID, signature) {
		return nil
	}
	return sm.GetSession(sessionID)
}

// signData creates an HMAC signature for data
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature
func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}
