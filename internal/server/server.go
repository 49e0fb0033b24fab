package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samvad-hq/departure-board/internal/domain"
	"github.com/samvad-hq/departure-board/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// SnapshotSource exposes the latest board state.
type SnapshotSource interface {
	Latest() (domain.Snapshot, bool)
}

// Server is the read-only HTTP surface of the board, meant for LCD
// controllers and health checks.
type Server struct {
	addr   string
	source SnapshotSource
	router chi.Router
	log    logger.Logger
}

// New builds a server; Run starts listening.
func New(addr string, source SnapshotSource, log logger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	s := &Server{
		addr:   addr,
		source: source,
		router: chi.NewRouter(),
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/board", s.handleBoard)
	s.router.Get("/board/{label}", s.handleBoardLine)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("status server listening", "server", map[string]any{"addr": s.addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("status server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown status server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.source.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no departures fetched yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBoardLine(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.source.Latest()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no departures fetched yet"})
		return
	}
	label := chi.URLParam(r, "label")
	value, found := snap.Value(label)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown field %q", label)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"label": label, "value": value})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
