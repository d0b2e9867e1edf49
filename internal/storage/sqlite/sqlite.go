// Package sqlite provides the embedded snapshot store used by
// single-binary deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FranksOps/seedwatch/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteStore implements storage.Store
var _ storage.Store = (*sqliteStore)(nil)

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS site_stats (
	id TEXT PRIMARY KEY,
	site TEXT NOT NULL,
	uid INTEGER NOT NULL,
	username TEXT NOT NULL,
	upload INTEGER NOT NULL,
	download INTEGER NOT NULL,
	bonus REAL NOT NULL,
	seeding_size INTEGER NOT NULL,
	seeding_num INTEGER NOT NULL,
	level TEXT NOT NULL,
	update_time INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_site_stats_site_time ON site_stats (site, update_time);
`

// New creates a SQLite-backed storage.Store.
func New(dsn string) (storage.Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Append(ctx context.Context, snap *storage.Snapshot) error {
	query := `
	INSERT INTO site_stats (
		id, site, uid, username, upload, download, bonus, seeding_size, seeding_num, level, update_time, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		snap.ID,
		snap.Site,
		snap.Stats.UID,
		snap.Stats.Username,
		snap.Stats.Upload,
		snap.Stats.Download,
		snap.Stats.Bonus,
		snap.Stats.SeedingSize,
		snap.Stats.Seeding,
		snap.Stats.Level,
		snap.Stats.UpdateTime,
		snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot for %s: %w", snap.Site, err)
	}
	return nil
}

func (s *sqliteStore) Latest(ctx context.Context, site string) (*storage.Snapshot, error) {
	snaps, err := s.History(ctx, storage.Filter{Site: site, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

func (s *sqliteStore) History(ctx context.Context, filter storage.Filter) ([]*storage.Snapshot, error) {
	query := `SELECT id, site, uid, username, upload, download, bonus, seeding_size, seeding_num, level, update_time, created_at FROM site_stats WHERE 1=1`
	args := []any{}

	if filter.Site != "" {
		query += ` AND site = ?`
		args = append(args, filter.Site)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*storage.Snapshot
	for rows.Next() {
		var snap storage.Snapshot
		err := rows.Scan(
			&snap.ID, &snap.Site, &snap.Stats.UID, &snap.Stats.Username,
			&snap.Stats.Upload, &snap.Stats.Download, &snap.Stats.Bonus,
			&snap.Stats.SeedingSize, &snap.Stats.Seeding, &snap.Stats.Level,
			&snap.Stats.UpdateTime, &snap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
