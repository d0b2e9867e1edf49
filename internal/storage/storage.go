// Package storage defines the append-only snapshot store fed by
// successful refreshes.
package storage

import (
	"context"
	"time"

	"github.com/FranksOps/seedwatch/internal/stats"
)

// Snapshot is one persisted statistics record for one site. Leeching is
// a point-in-time value with no trend use, so it is not persisted; a
// snapshot read back from the store reports it as zero.
type Snapshot struct {
	ID        string
	Site      string
	Stats     stats.Record
	CreatedAt time.Time
}

// Filter selects snapshots for history queries.
type Filter struct {
	Site   string
	Since  *time.Time
	Limit  int
	Offset int
}

// Store is the persistence contract for snapshots.
type Store interface {
	// Append inserts one snapshot row. Rows are never updated or deleted.
	Append(ctx context.Context, snap *Snapshot) error
	// Latest returns the most recent snapshot for a site, or nil when the
	// site has never been refreshed.
	Latest(ctx context.Context, site string) (*Snapshot, error)
	// History returns snapshots matching the filter, newest first.
	History(ctx context.Context, filter Filter) ([]*Snapshot, error)
	Close() error
}
