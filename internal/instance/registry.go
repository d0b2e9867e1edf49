package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/FranksOps/seedwatch/internal/extract"
	"github.com/FranksOps/seedwatch/internal/stats"
	"github.com/FranksOps/seedwatch/internal/storage"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultSchedule fires at minute zero of every fourth hour.
const DefaultSchedule = "0 */4 * * *"

var (
	// ErrNoAdapter is returned when a site identifier has no entry in the
	// adapter table. Raised at creation time, never at refresh time.
	ErrNoAdapter = errors.New("no adapter registered for site")
	// ErrUnknownSite is returned when destroying a site that is not running.
	ErrUnknownSite = errors.New("site is not running")
)

// Registry is the process-wide table of live site instances. Each
// instance gets its own cron entry on a shared scheduler; entries fire
// independently of each other and of any in-flight refresh.
type Registry struct {
	src   extract.PageSource
	store storage.Store
	log   *slog.Logger
	cron  *cron.Cron

	mu        sync.Mutex
	instances map[string]*Instance
	entries   map[string]cron.EntryID
}

// NewRegistry builds a registry over a shared page source and snapshot
// store and starts its scheduler. A nil logger falls back to
// slog.Default.
func NewRegistry(src extract.PageSource, store storage.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		src:       src,
		store:     store,
		log:       logger,
		cron:      cron.New(),
		instances: make(map[string]*Instance),
		entries:   make(map[string]cron.EntryID),
	}
	r.cron.Start()
	return r
}

// SiteConfig declares one site to poll. Schedule is a five-field cron
// expression; empty means DefaultSchedule. Cookie is the site's opaque
// credential and is never logged.
type SiteConfig struct {
	Site     string
	Cookie   string
	Schedule string
}

// Create starts polling a site: it resolves the adapter, seeds the
// last-known statistics from the store, registers the cron entry, and
// kicks off one immediate refresh in the background. Creating a site
// that is already running replaces the prior instance; the replaced
// instance stops being scheduled but an in-flight refresh may still
// complete and persist.
func (r *Registry) Create(ctx context.Context, cfg SiteConfig) (*Instance, error) {
	adapter, ok := extract.Lookup(cfg.Site)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAdapter, cfg.Site)
	}

	inst, err := New(Config{
		Site:    cfg.Site,
		Cookie:  cfg.Cookie,
		Adapter: adapter,
		Source:  r.src,
		Store:   r.store,
		Logger:  r.log,
	})
	if err != nil {
		return nil, err
	}

	// Stale-but-available: surface the last persisted snapshot before
	// the first live refresh lands.
	snap, err := r.store.Latest(ctx, cfg.Site)
	if err != nil {
		r.log.Warn("seeding latest stats failed", "site", cfg.Site, "error", err)
	} else if snap != nil {
		inst.setLatest(&snap.Stats)
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Register the new entry before touching the prior one, so a rejected
	// schedule leaves a running replaced site fully intact.
	id, err := r.cron.AddFunc(schedule, func() {
		_ = inst.Refresh(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q for %s: %w", schedule, cfg.Site, err)
	}

	if prior, ok := r.entries[cfg.Site]; ok {
		r.cron.Remove(prior)
	}

	r.instances[cfg.Site] = inst
	r.entries[cfg.Site] = id

	go func() {
		_ = inst.Refresh(context.Background())
	}()

	r.log.Info("instance created", "site", cfg.Site, "schedule", schedule)
	return inst, nil
}

// Destroy stops scheduling a site and removes it from the registry. An
// in-flight refresh is allowed to finish and persist its snapshot.
func (r *Registry) Destroy(site string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.entries[site]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSite, site)
	}
	r.cron.Remove(id)
	delete(r.entries, site)
	delete(r.instances, site)

	r.log.Info("instance destroyed", "site", site)
	return nil
}

// Get returns the running instance for a site, if any.
func (r *Registry) Get(site string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[site]
	return inst, ok
}

// Sites returns the identifiers of all running instances, sorted.
func (r *Registry) Sites() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchAll fans a keyword out to every running instance concurrently
// and collects the per-site results in site order. Sites that fail or
// lack search support contribute empty results, so the batch always
// completes.
func (r *Registry) SearchAll(ctx context.Context, keyword string) []stats.SearchResult {
	r.mu.Lock()
	list := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		list = append(list, inst)
	}
	r.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].site < list[j].site })

	results := make([]stats.SearchResult, len(list))
	var g errgroup.Group
	for idx, inst := range list {
		g.Go(func() error {
			results[idx] = inst.Search(ctx, keyword)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Close stops the scheduler and waits for running jobs to finish.
func (r *Registry) Close() {
	<-r.cron.Stop().Done()
}
