package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/departure-board/internal/domain"
)

type fakeSource struct {
	snap *domain.Snapshot
}

func (f fakeSource) Latest() (domain.Snapshot, bool) {
	if f.snap == nil {
		return domain.Snapshot{}, false
	}
	return *f.snap, true
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	New(":0", fakeSource{}, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBoardBeforeFirstPoll(t *testing.T) {
	rec := httptest.NewRecorder()
	New(":0", fakeSource{}, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBoardServesLatestSnapshot(t *testing.T) {
	snap := domain.NewSnapshot("/traffic/slussen", []domain.Line{
		{Label: "Linje", Value: "17"},
		{Label: "Mot", Value: "Farsta"},
	}, time.Now())
	h := New(":0", fakeSource{snap: &snap}, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got domain.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != snap.ID || len(got.Lines) != 2 {
		t.Fatalf("unexpected snapshot %+v", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board/Mot", nil))
	var line map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&line); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if rec.Code != http.StatusOK || line["value"] != "Farsta" {
		t.Fatalf("line = %d %#v", rec.Code, line)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board/Platform", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown label status = %d", rec.Code)
	}
}
