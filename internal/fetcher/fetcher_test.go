package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FranksOps/seedwatch/internal/fingerprint"
	"github.com/FranksOps/seedwatch/pkg/doccache"
)

func newTestFetcher(t *testing.T, cache doccache.Store, ttl time.Duration) *Fetcher {
	t.Helper()
	f, err := New(Config{
		Timeout:     5 * time.Second,
		Cache:       cache,
		TTL:         ttl,
		Fingerprint: fingerprint.ProfileGo,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestDocument_CacheRoundTrip(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<html><body><b id="user">alice</b></body></html>`))
	}))
	defer ts.Close()

	cache := doccache.NewMemory()
	defer cache.Close()
	f := newTestFetcher(t, cache, time.Minute)

	ctx := context.Background()
	first, err := f.Document(ctx, ts.URL, "uid=1")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := f.Document(ctx, ts.URL, "uid=1")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("expected exactly 1 network call, got %d", got)
	}
	if a, b := first.Find("#user").Text(), second.Find("#user").Text(); a != b || a != "alice" {
		t.Errorf("expected identical parsed content, got %q and %q", a, b)
	}
}

func TestDocument_CacheExpiry(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	cache := doccache.NewMemory()
	defer cache.Close()
	f := newTestFetcher(t, cache, 30*time.Millisecond)

	ctx := context.Background()
	if _, err := f.Document(ctx, ts.URL, ""); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := f.Document(ctx, ts.URL, ""); err != nil {
		t.Fatal(err)
	}

	if got := hits.Load(); got != 2 {
		t.Errorf("expected a fresh network call after TTL, got %d total", got)
	}
}

func TestDocument_SendsCredential(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected User-Agent header")
		}
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer ts.Close()

	cache := doccache.NewMemory()
	defer cache.Close()
	f := newTestFetcher(t, cache, time.Minute)

	if _, err := f.Document(context.Background(), ts.URL, "pass=c1"); err != nil {
		t.Fatal(err)
	}
	if gotCookie != "pass=c1" {
		t.Errorf("expected credential cookie, got %q", gotCookie)
	}
}

func TestGet_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	cache := doccache.NewMemory()
	defer cache.Close()
	f := newTestFetcher(t, cache, time.Minute)

	_, err := f.Get(context.Background(), ts.URL, "")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if ferr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500 in error, got %d", ferr.StatusCode)
	}
}

func TestGet_ChallengeClassification(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<html><div id="cf-browser-verification"></div></html>`))
	}))
	defer ts.Close()

	cache := doccache.NewMemory()
	defer cache.Close()
	f := newTestFetcher(t, cache, time.Minute)

	_, err := f.Get(context.Background(), ts.URL, "")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if ferr.Challenge != "Cloudflare" {
		t.Errorf("expected Cloudflare challenge classification, got %q", ferr.Challenge)
	}
}

func TestGet_BypassesCache(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":200}`))
	}))
	defer ts.Close()

	cache := doccache.NewMemory()
	defer cache.Close()
	f := newTestFetcher(t, cache, time.Minute)

	ctx := context.Background()
	if _, err := f.Get(ctx, ts.URL, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Get(ctx, ts.URL, ""); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("Get must not cache, expected 2 network calls, got %d", got)
	}
}

func TestNew_RequiresCache(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing cache store")
	}
}
