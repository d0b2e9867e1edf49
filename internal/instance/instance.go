// Package instance binds one tracker site to its credential, schedule,
// and last-known statistics, and runs the refresh and search pipelines
// for it. The Registry owns the live set of instances.
package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FranksOps/seedwatch/internal/extract"
	"github.com/FranksOps/seedwatch/internal/metrics"
	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/FranksOps/seedwatch/internal/storage"
	"github.com/google/uuid"
)

// ErrRefreshInFlight is returned when a refresh is requested while a
// previous one for the same instance is still running.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// PersistError reports that a successfully extracted snapshot could not
// be written to the store. The instance's last-known statistics stay at
// their previous value.
type PersistError struct {
	Site string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: persist snapshot: %v", e.Site, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Config assembles one site instance. Site, Adapter.Extractor, Source
// and Store are required.
type Config struct {
	Site    string
	Cookie  string
	Adapter extract.Adapter
	Source  extract.PageSource
	Store   storage.Store
	Logger  *slog.Logger
}

// Instance is one live polling unit. Its credential and adapter are
// fixed at creation; only latest changes over its lifetime.
type Instance struct {
	site    string
	cookie  string
	adapter extract.Adapter
	src     extract.PageSource
	store   storage.Store
	log     *slog.Logger

	mu     sync.RWMutex
	latest *stats.Record

	inFlight atomic.Bool

	now func() time.Time
}

func New(cfg Config) (*Instance, error) {
	if cfg.Site == "" {
		return nil, errors.New("instance: site is required")
	}
	if cfg.Adapter.Extractor == nil {
		return nil, fmt.Errorf("instance: %s has no extractor", cfg.Site)
	}
	if cfg.Source == nil {
		return nil, errors.New("instance: page source is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("instance: snapshot store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Instance{
		site:    cfg.Site,
		cookie:  cfg.Cookie,
		adapter: cfg.Adapter,
		src:     cfg.Source,
		store:   cfg.Store,
		log:     cfg.Logger,
		now:     time.Now,
	}, nil
}

// Site returns the site identifier the instance polls.
func (i *Instance) Site() string { return i.site }

// Latest returns a copy of the most recent statistics record, which may
// predate this process if it was seeded from the store. Nil means the
// site has never been refreshed.
func (i *Instance) Latest() *stats.Record {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.latest == nil {
		return nil
	}
	rec := *i.latest
	return &rec
}

func (i *Instance) setLatest(rec *stats.Record) {
	i.mu.Lock()
	i.latest = rec
	i.mu.Unlock()
}

// Refresh runs one fetch/extract/persist cycle. On any failure the
// last-known statistics keep their previous value and the scheduler is
// unaffected. At most one refresh runs per instance at a time; a second
// caller gets ErrRefreshInFlight.
func (i *Instance) Refresh(ctx context.Context) error {
	if !i.inFlight.CompareAndSwap(false, true) {
		i.log.Debug("refresh skipped, previous still running", "site", i.site)
		return ErrRefreshInFlight
	}
	defer i.inFlight.Store(false)

	start := time.Now()
	err := i.refresh(ctx)
	metrics.RecordRefresh(i.site, time.Since(start), err)
	if err != nil {
		i.log.Error("refresh failed", "site", i.site, "error", err)
		return err
	}
	i.log.Info("refresh completed", "site", i.site, "duration", time.Since(start))
	return nil
}

func (i *Instance) refresh(ctx context.Context) error {
	rec, err := i.adapter.Extractor.Extract(ctx, i.src, i.cookie)
	if err != nil {
		return err
	}

	// Snapshots within the same wall-clock hour carry the same update
	// time no matter which second the refresh ran. The floor is against
	// the local hour, which differs from Truncate in zones with a
	// fractional UTC offset.
	now := i.now()
	rec.UpdateTime = hourFloor(now)

	snap := &storage.Snapshot{
		ID:        uuid.NewString(),
		Site:      i.site,
		Stats:     rec,
		CreatedAt: now,
	}
	if err := i.store.Append(ctx, snap); err != nil {
		return &PersistError{Site: i.site, Err: err}
	}

	i.setLatest(&rec)
	return nil
}

// hourFloor returns the unix timestamp of the start of t's hour in t's
// own location.
func hourFloor(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Unix()
}

// Search runs the site's search pipeline for a keyword. A site without
// search support answers with an empty result and no network call, and
// a failed search degrades to an empty result as well, so fleet-wide
// searches never abort on one misbehaving site.
func (i *Instance) Search(ctx context.Context, keyword string) stats.SearchResult {
	result := stats.SearchResult{Site: i.site, Torrents: []stats.Torrent{}}
	if i.adapter.Searcher == nil {
		return result
	}

	torrents, err := i.adapter.Searcher.Search(ctx, i.src, i.cookie, keyword)
	metrics.RecordSearch(i.site, err)
	if err != nil {
		i.log.Warn("search failed", "site", i.site, "error", err)
		return result
	}
	if torrents != nil {
		result.Torrents = torrents
	}
	return result
}
