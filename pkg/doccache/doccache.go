// Package doccache provides the shared raw-page cache used by the
// document fetcher. Entries are keyed by request URL only, so two sites
// fetching the same URL with different credentials would share an entry.
// No site in the current adapter set shares a URL, but the hazard is real
// if that ever changes.
package doccache

import (
	"context"
	"time"
)

// KeyPrefix namespaces cache entries in shared stores.
const KeyPrefix = "seedwatch:document:body:"

// Store holds raw response bodies for a bounded time window.
// Implementations must never return an entry past its TTL.
type Store interface {
	// Get returns the cached body for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	// SetWithTTL stores body under key, expiring after ttl.
	SetWithTTL(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Close() error
}

// Key builds the namespaced cache key for a request URL.
func Key(url string) string {
	return KeyPrefix + url
}
