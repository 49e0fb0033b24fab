package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGetSendsHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Errorf("missing header, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("missing query param, got %q", got)
		}
		w.Header().Set("X-Reply", "ok")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, nil)
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{"X-Test": "1"}, map[string]string{"limit": "3"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("unexpected status %d", resp.StatusCode())
	}
	if resp.Status() != "418 I'm a teapot" {
		t.Fatalf("unexpected status line %q", resp.Status())
	}
	if string(resp.Body()) != "short and stout" {
		t.Fatalf("unexpected body %q", resp.Body())
	}
	if resp.Header().Get("X-Reply") != "ok" {
		t.Fatalf("missing response header")
	}
}

func TestRestyClientGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewRestyClient(time.Second, nil)
	if _, err := client.Get(context.Background(), url, nil, nil); err == nil {
		t.Fatalf("expected error for closed server")
	}
}

func TestRestyClientsKeepNoCookieJar(t *testing.T) {
	if jar := NewRestyHTTPClient(time.Second).GetClient().Jar; jar != nil {
		t.Fatalf("expected no cookie jar, got %T", jar)
	}
	if jar := NewRestyClient(time.Second, nil).client.GetClient().Jar; jar != nil {
		t.Fatalf("expected no cookie jar, got %T", jar)
	}
}
