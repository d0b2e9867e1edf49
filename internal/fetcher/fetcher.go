// Package fetcher retrieves tracker pages through a shared raw-page
// cache and returns them as parsed, queryable documents.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/seedwatch/internal/fingerprint"
	"github.com/FranksOps/seedwatch/internal/metrics"
	"github.com/FranksOps/seedwatch/pkg/doccache"
	"github.com/FranksOps/seedwatch/pkg/httpclient"
	"github.com/FranksOps/seedwatch/pkg/proxy"
	"github.com/FranksOps/seedwatch/pkg/ratelimit"
	"github.com/FranksOps/seedwatch/pkg/useragent"
	"github.com/PuerkitoBio/goquery"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// DefaultTTL bounds how long a raw page body stays valid in the cache.
const DefaultTTL = 600 * time.Second

// Config configures a Fetcher.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	// Cache holds raw response bodies. Required.
	Cache doccache.Store
	// TTL overrides DefaultTTL when positive.
	TTL         time.Duration
	UAPool      *useragent.Pool
	Fingerprint fingerprint.Profile
	Limiter     *ratelimit.Limiter
	ProxyPool   *proxy.Pool
	Logger      *slog.Logger
}

// Fetcher performs credential-bound page fetches with read-through
// caching. A single underlying client persists connections across
// requests.
type Fetcher struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

// New initializes a Fetcher with the given configuration.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("fetcher requires a cache store")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// One transport per fetcher keeps connection pooling effective. The
	// proxy function reads from the request context so proxies can rotate
	// per request without touching the transport concurrently.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Hostname() == "127.0.0.1" || req.URL.Host == "example.com" {
			// Keep local test servers off any environment proxy.
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{cfg: cfg, client: client, logger: cfg.Logger}, nil
}

// Document returns the page at targetURL as a parsed document. A live
// cache entry is served without a network call; a miss issues exactly one
// authenticated request and one cache write. The cache stores raw bytes,
// so every call re-parses.
func (f *Fetcher) Document(ctx context.Context, targetURL, cookie string) (*goquery.Document, error) {
	key := doccache.Key(targetURL)

	cached, ok, err := f.cfg.Cache.Get(ctx, key)
	if err != nil {
		// The cache is best effort. Fall through to the network.
		f.logger.Warn("cache read failed", "url", targetURL, "err", err)
	}
	if ok {
		metrics.DocumentCacheHits.Inc()
		return parse(targetURL, cached)
	}
	metrics.DocumentCacheMisses.Inc()

	body, err := f.Get(ctx, targetURL, cookie)
	if err != nil {
		return nil, err
	}

	if err := f.cfg.Cache.SetWithTTL(ctx, key, body, f.cfg.TTL); err != nil {
		f.logger.Warn("cache write failed", "url", targetURL, "err", err)
	}

	return parse(targetURL, body)
}

// Get issues one authenticated GET and returns the full response body.
// It bypasses the cache; adapters use it for follow-up endpoints whose
// responses must not be shared.
func (f *Fetcher) Get(ctx context.Context, targetURL, cookie string) ([]byte, error) {
	if f.cfg.Limiter != nil {
		if err := f.cfg.Limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: targetURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}

	var activeProxy *url.URL
	if f.cfg.ProxyPool != nil {
		if activeProxy = f.cfg.ProxyPool.Next(); activeProxy != nil {
			req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
		}
	}

	req.Header.Set("User-Agent", f.cfg.UAPool.GetSequential())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.cfg.ProxyPool.MarkFailure(activeProxy)
		}
		return nil, &FetchError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.cfg.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// Partial content never leaves the fetcher.
		return nil, &FetchError{URL: targetURL, StatusCode: resp.StatusCode, Err: err}
	}

	metrics.FetchBytesTotal.WithLabelValues(req.URL.Hostname()).Add(float64(len(body)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ferr := &FetchError{URL: targetURL, StatusCode: resp.StatusCode}
		if detected, shield := detectChallenge(resp.StatusCode, resp.Header, body); detected {
			ferr.Challenge = shield
		}
		return nil, ferr
	}

	return body, nil
}

func parse(targetURL string, body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: fmt.Errorf("parse document: %w", err)}
	}
	return doc, nil
}
