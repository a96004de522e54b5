// Package server exposes the matcher over HTTP: one multipart upload
// endpoint returning the structured match result.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/matcher"
	"github.com/questhunt/location-matcher/pkg/types"
)

// LocationMatcher is the matching pipeline the server fronts.
type LocationMatcher interface {
	Match(ctx context.Context, image []byte) (types.MatchResult, error)
}

// formOverhead covers multipart boundaries and headers on top of the file
// payload when limiting the request body.
const formOverhead = 1 << 20

// Options configures the HTTP server.
type Options struct {
	Addr           string
	MaxUploadBytes int
}

// Server handles match requests. It holds no per-request state; every
// request is an independent unit of work.
type Server struct {
	matcher LocationMatcher
	opts    Options
}

// New creates a Server fronting the given matcher.
func New(m LocationMatcher, opts Options) *Server {
	if opts.MaxUploadBytes == 0 {
		opts.MaxUploadBytes = matcher.MaxPayloadBytes
	}
	return &Server{matcher: m, opts: opts}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/match", s.handleMatch)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleMatch accepts a multipart POST with a single "image" file field and
// responds with the match result as JSON. Internal error kinds are logged
// with a request id but never exposed verbatim to the caller.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.opts.MaxUploadBytes)+formOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Printf("[%s] match rejected: no image file: %v", reqID, err)
		http.Error(w, "No image file found in request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[%s] match rejected: reading upload %q failed: %v", reqID, header.Filename, err)
		http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := s.matcher.Match(r.Context(), data)
	if err != nil {
		s.writeMatchError(w, reqID, err)
		return
	}

	log.Printf("[%s] match %q (%d bytes) -> %s in %dms",
		reqID, header.Filename, len(data), result, time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("[%s] encoding response failed: %v", reqID, err)
	}
}

func (s *Server) writeMatchError(w http.ResponseWriter, reqID string, err error) {
	switch {
	case errors.Is(err, matcher.ErrPayloadInvalid):
		log.Printf("[%s] match rejected: %v", reqID, err)
		http.Error(w, "Invalid image: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, client.ErrTimeout):
		log.Printf("[%s] match failed: %v", reqID, err)
		http.Error(w, "Could not process image", http.StatusGatewayTimeout)
	default:
		// Contract violations land here too, logged with full context
		// (raw index and catalogue size are in the wrapped error).
		log.Printf("[%s] match failed: %v", reqID, err)
		http.Error(w, "Could not process image", http.StatusInternalServerError)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.opts.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
