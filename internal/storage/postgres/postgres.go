// Package postgres provides the snapshot store for deployments with a
// central database.
package postgres

import (
	"context"
	"fmt"

	"github.com/FranksOps/seedwatch/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresStore implements storage.Store
var _ storage.Store = (*postgresStore)(nil)

type postgresStore struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS site_stats (
	id TEXT PRIMARY KEY,
	site TEXT NOT NULL,
	uid BIGINT NOT NULL,
	username TEXT NOT NULL,
	upload BIGINT NOT NULL,
	download BIGINT NOT NULL,
	bonus DOUBLE PRECISION NOT NULL,
	seeding_size BIGINT NOT NULL,
	seeding_num INTEGER NOT NULL,
	level TEXT NOT NULL,
	update_time BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_site_stats_site_time ON site_stats (site, update_time);
`

// New creates a Postgres-backed storage.Store.
func New(ctx context.Context, dsn string) (storage.Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Append(ctx context.Context, snap *storage.Snapshot) error {
	query := `
	INSERT INTO site_stats (
		id, site, uid, username, upload, download, bonus, seeding_size, seeding_num, level, update_time, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
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

func (s *postgresStore) Latest(ctx context.Context, site string) (*storage.Snapshot, error) {
	snaps, err := s.History(ctx, storage.Filter{Site: site, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[0], nil
}

func (s *postgresStore) History(ctx context.Context, filter storage.Filter) ([]*storage.Snapshot, error) {
	query := `SELECT id, site, uid, username, upload, download, bonus, seeding_size, seeding_num, level, update_time, created_at FROM site_stats WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Site != "" {
		query += fmt.Sprintf(` AND site = $%d`, paramCount)
		args = append(args, filter.Site)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
