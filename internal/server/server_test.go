package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/matcher"
	"github.com/questhunt/location-matcher/pkg/types"
)

// fakeMatcher returns a canned result or error and records invocations.
type fakeMatcher struct {
	calls  int
	result types.MatchResult
	err    error
}

func (f *fakeMatcher) Match(ctx context.Context, image []byte) (types.MatchResult, error) {
	f.calls++
	if f.err != nil {
		return types.MatchResult{}, f.err
	}
	return f.result, nil
}

// multipartBody builds a multipart request body with one file field.
func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func doMatch(t *testing.T, s *Server, method string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/match", body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMatchSuccess(t *testing.T) {
	fake := &fakeMatcher{result: types.MatchResult{LocationIndex: 3, Confidence: types.ConfidenceHigh}}
	s := New(fake, Options{})

	body, contentType := multipartBody(t, "image", "deer.jpg", []byte{0xff, 0xd8, 0xff, 0xe0})
	rec := doMatch(t, s, http.MethodPost, body, contentType)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var resp struct {
		LocationIndex int    `json:"location_index"`
		Confidence    string `json:"confidence"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp.LocationIndex != 3 || resp.Confidence != "high" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if fake.calls != 1 {
		t.Errorf("Expected one matcher call, got %d", fake.calls)
	}
}

func TestMatchMethodNotAllowed(t *testing.T) {
	fake := &fakeMatcher{}
	s := New(fake, Options{})

	rec := doMatch(t, s, http.MethodGet, nil, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
	if fake.calls != 0 {
		t.Errorf("Matcher should not be called for GET, got %d calls", fake.calls)
	}
}

func TestMatchNoFileField(t *testing.T) {
	fake := &fakeMatcher{}
	s := New(fake, Options{})

	// Multipart form without an "image" field.
	body, contentType := multipartBody(t, "photo", "deer.jpg", []byte{0xff, 0xd8})
	rec := doMatch(t, s, http.MethodPost, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if fake.calls != 0 {
		t.Errorf("Matcher should not be called without a file, got %d calls", fake.calls)
	}
}

func TestMatchNoBody(t *testing.T) {
	s := New(&fakeMatcher{}, Options{})

	rec := doMatch(t, s, http.MethodPost, nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestMatchPayloadInvalid(t *testing.T) {
	fake := &fakeMatcher{err: fmt.Errorf("unsupported content type text/plain: %w", matcher.ErrPayloadInvalid)}
	s := New(fake, Options{})

	body, contentType := multipartBody(t, "image", "notes.txt", []byte("plain text"))
	rec := doMatch(t, s, http.MethodPost, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid image") {
		t.Errorf("Expected a human-readable reason, got %q", rec.Body.String())
	}
}

func TestMatchUpstreamFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unavailable", fmt.Errorf("connect: %w", client.ErrUnavailable), http.StatusInternalServerError},
		{"contract violation", fmt.Errorf("index 99 of 7: %w", client.ErrContract), http.StatusInternalServerError},
		{"timeout", fmt.Errorf("deadline: %w", client.ErrTimeout), http.StatusGatewayTimeout},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fake := &fakeMatcher{err: test.err}
			s := New(fake, Options{})

			body, contentType := multipartBody(t, "image", "deer.jpg", []byte{0xff, 0xd8})
			rec := doMatch(t, s, http.MethodPost, body, contentType)

			if rec.Code != test.wantCode {
				t.Errorf("Expected %d, got %d", test.wantCode, rec.Code)
			}
			// Internal detail stays server-side.
			if strings.Contains(rec.Body.String(), "99") {
				t.Errorf("Response leaks internal error detail: %q", rec.Body.String())
			}
		})
	}
}

func TestMatchOversizeBody(t *testing.T) {
	fake := &fakeMatcher{result: types.MatchResult{LocationIndex: 0, Confidence: types.ConfidenceHigh}}
	s := New(fake, Options{MaxUploadBytes: 1 << 10})

	big := make([]byte, 3<<20)
	body, contentType := multipartBody(t, "image", "big.jpg", big)
	rec := doMatch(t, s, http.MethodPost, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversize body, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := New(&fakeMatcher{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
