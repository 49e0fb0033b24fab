package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/departure-board/internal/config"
)

func runtimeConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:       baseURL,
		Direction:        "slussen",
		EndpointTemplate: "/traffic/" + config.DirectionPlaceholder,
		PollInterval:     20 * time.Millisecond,
		RequestTimeout:   time.Second,
		StorageType:      "none",
		StorageTTL:       time.Hour,
		StorageCleanup:   time.Hour,
	}
}

func TestRuntimeRunsBoardAgainstAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/traffic/slussen" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"departure":{"route":{"designation":"13","direction":"Ropsten"},"nextDepartureIn":2}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	rt, err := NewRuntime(context.Background(), runtimeConfig(t, srv.URL+"/api/"), nil, &out)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := rt.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.HasPrefix(out.String(), "Linje: 13\nMot: Ropsten\nOm: 2\n\n") {
		t.Fatalf("output = %q", out.String())
	}
	if snap, ok := rt.Board.Latest(); !ok || snap.Resource != "/traffic/slussen" {
		t.Fatalf("latest = %+v, %v", snap, ok)
	}
}

func TestRuntimeUsesLayoutFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"stop":{"name":"Slussen"}}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte("fields:\n  - label: Hållplats\n    path: stop.name\n"), 0o600); err != nil {
		t.Fatalf("write layout: %v", err)
	}

	cfg := runtimeConfig(t, srv.URL)
	cfg.LayoutFile = path

	var out bytes.Buffer
	rt, err := NewRuntime(context.Background(), cfg, nil, &out)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	if err := rt.Board.PollOnce(context.Background()); err != nil {
		t.Fatalf("PollOnce: %v", err)
	}
	if out.String() != "Hållplats: Slussen\n\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestNewRuntimeRejectsBadStorage(t *testing.T) {
	cfg := runtimeConfig(t, "http://localhost")
	cfg.StorageType = "redis"
	if _, err := NewRuntime(context.Background(), cfg, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected storage error")
	}
}

func TestNewRuntimeRejectsMissingPublishersFile(t *testing.T) {
	cfg := runtimeConfig(t, "http://localhost")
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewRuntime(context.Background(), cfg, nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected publishers error")
	}
}
