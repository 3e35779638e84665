package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/session"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	store := session.NewManager(session.Options{}, time.Hour)
	t.Cleanup(store.Stop)
	return NewSessionManager("test-secret", store)
}

func TestSessionManager_CreateAndGet(t *testing.T) {
	sm := newTestManager(t)

	s, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if s.ID == "" {
		t.Error("session ID is empty")
	}
	if s.ExpiresAt.Before(time.Now()) {
		t.Error("session expires in the past")
	}
	if sm.GetSession(s.ID) != s {
		t.Error("GetSession() did not return the created session")
	}

	sm.DeleteSession(s.ID)
	if sm.GetSession(s.ID) != nil {
		t.Error("GetSession() should return nil after deletion")
	}
}

func TestSessionManager_CookieRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	s, _ := sm.CreateSession()

	rec := httptest.NewRecorder()
	sm.SetSessionCookie(rec, s)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != constants.SessionCookieName {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if sm.GetSessionFromRequest(req) != s {
		t.Error("expected session from signed cookie")
	}
}

func TestSessionManager_TamperedCookie(t *testing.T) {
	sm := newTestManager(t)
	s, _ := sm.CreateSession()

	tests := []string{
		s.ID,
		s.ID + ".bogus",
		"other." + sm.signData(s.ID),
	}
	for _, value := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: value})
		if sm.GetSessionFromRequest(req) != nil {
			t.Errorf("cookie %q should not resolve to a session", value)
		}
	}
}

func TestSessionManager_OtherSecretRejected(t *testing.T) {
	sm := newTestManager(t)
	s, _ := sm.CreateSession()
	other := NewSessionManager("another-secret", nil)

	if other.verifySignature(s.ID, sm.signData(s.ID)) {
		t.Error("signature from a different secret should not verify")
	}
}

func TestSessionManager_BearerToken(t *testing.T) {
	sm := newTestManager(t)
	s, _ := sm.CreateSession()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sm.Token(s))
	if sm.GetSessionFromRequest(req) != s {
		t.Error("expected session from bearer token")
	}

	req.Header.Set("Authorization", "Bearer "+s.ID)
	if sm.GetSessionFromRequest(req) != nil {
		t.Error("unsigned bearer token should be rejected")
	}
}

func TestRequireSession(t *testing.T) {
	sm := newTestManager(t)
	s, _ := sm.CreateSession()

	var seen *session.Session
	handler := RequireSession(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no active session") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sm.Token(s))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != s {
		t.Errorf("expected session in context, got status %d", rec.Code)
	}
}

func TestGetSessionFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetSessionFromContext(req.Context()) != nil {
		t.Error("expected nil without session")
	}
}

func TestCORS(t *testing.T) {
	handler := CORS(ParseAllowedOrigins("https://book.example.com, ,https://other.example.com"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }),
	)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://book.example.com", true},
		{"http://localhost:5173", true},
		{"https://evil.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		got := rec.Header().Get("Access-Control-Allow-Origin")
		if (got == tt.origin && got != "") != tt.allowed {
			t.Errorf("origin %q: allow header %q, want allowed=%v", tt.origin, got, tt.allowed)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected preflight 200, got %d", rec.Code)
	}
}
