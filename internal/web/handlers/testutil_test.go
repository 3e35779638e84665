package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photobook/internal/archive"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/imagefmt"
	"github.com/kozaktomas/photobook/internal/render"
	"github.com/kozaktomas/photobook/internal/session"
	"github.com/kozaktomas/photobook/internal/web/middleware"
)

// testConfig loads the default config with the embedded presets
func testConfig() *config.Config {
	return config.Load()
}

// newTestSessionManager creates a session manager backed by an in-memory store
func newTestSessionManager(t *testing.T) *middleware.SessionManager {
	t.Helper()
	store := session.NewManager(session.Options{}, time.Hour)
	sm := middleware.NewSessionManager("test-secret", store)
	t.Cleanup(sm.Stop)
	return sm
}

// newTestSession creates a session registered with sm
func newTestSession(t *testing.T, sm *middleware.SessionManager) *session.Session {
	t.Helper()
	s, err := sm.CreateSession()
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return s
}

// testSessionDeps bundles a session manager with one live session
type testSessionDeps struct {
	manager *middleware.SessionManager
	session *session.Session
}

func newTestDeps(t *testing.T) *testSessionDeps {
	t.Helper()
	sm := newTestSessionManager(t)
	return &testSessionDeps{manager: sm, session: newTestSession(t, sm)}
}

// newTestAssembler builds the real export pipeline with a fixed clock
func newTestAssembler() *archive.Assembler {
	composer := &render.FPDFComposer{Now: func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }}
	emitter := render.NewEmitter(composer, imagefmt.StdDecoder{}, render.Options{})
	return archive.NewAssembler(emitter, archive.ZipPacker{})
}

// requestWithSession creates a request with a session in context
func requestWithSession(method, path string, body io.Reader, s *session.Session) *http.Request {
	req := httptest.NewRequest(method, path, body)
	if s != nil {
		req = req.WithContext(middleware.SetSessionInContext(req.Context(), s))
	}
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonBody encodes v as a request body
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return bytes.NewReader(data)
}

// jpegBytes encodes a solid JPEG of the given size
func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

type testFile struct {
	name string
	data []byte
}

// multipartFiles builds a multipart body with every file in the "files" field
func multipartFiles(t *testing.T, files ...testFile) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// addPhotos uploads n small JPEGs straight into the session
func addPhotos(t *testing.T, s *session.Session, n int) {
	t.Helper()
	uploads := make([]session.Upload, 0, n)
	for i := range n {
		data := jpegBytes(t, 60, 40)
		uploads = append(uploads, session.Upload{
			Name:   "photo" + strings.Repeat("x", i) + ".jpg",
			Size:   int64(len(data)),
			Reader: bytes.NewReader(data),
		})
	}
	if res := s.Add(uploads); len(res.Rejections) != 0 {
		t.Fatalf("unexpected rejections: %v", res.Rejections)
	}
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
