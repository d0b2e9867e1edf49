// Package extract translates per-site page structures into the
// normalized statistics contract. Each site is served by a strategy in a
// static dispatch table; adding a site means adding one table entry.
package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/PuerkitoBio/goquery"
)

// PageSource retrieves authenticated pages. Document goes through the
// shared raw-page cache; Get bypasses it for follow-up endpoints.
type PageSource interface {
	Document(ctx context.Context, url, cookie string) (*goquery.Document, error)
	Get(ctx context.Context, url, cookie string) ([]byte, error)
}

// Extractor produces a normalized statistics record for one site.
// Implementations either return a fully populated record (optional
// fields defaulted) or fail; they never return partial data.
type Extractor interface {
	Extract(ctx context.Context, src PageSource, cookie string) (stats.Record, error)
}

// Searcher produces torrent listings for a keyword. Not every site has one.
type Searcher interface {
	Search(ctx context.Context, src PageSource, cookie, keyword string) ([]stats.Torrent, error)
}

// Adapter pairs a site's refresh extractor with its optional search
// extractor.
type Adapter struct {
	Extractor Extractor
	Searcher  Searcher // nil when the site has no search support
}

// Lookup returns the adapter registered for a site identifier.
func Lookup(site string) (Adapter, bool) {
	a, ok := registry[site]
	return a, ok
}

// Sites returns all site identifiers with a registered adapter, sorted.
func Sites() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DriftError reports that an expected element was absent from a fetched
// page. Either the site changed its template or the credential died and
// the fetch came back as a login page.
type DriftError struct {
	Site     string
	Selector string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%s: expected element %q absent (expired credential or template drift)", e.Site, e.Selector)
}

// FollowUpError reports that a secondary authenticated request failed
// after the primary page parsed cleanly.
type FollowUpError struct {
	Site string
	URL  string
	Err  error
}

func (e *FollowUpError) Error() string {
	return fmt.Sprintf("%s: follow-up request %s failed: %v", e.Site, e.URL, e.Err)
}

func (e *FollowUpError) Unwrap() error { return e.Err }
