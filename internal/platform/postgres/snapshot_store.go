package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/genflow/internal/durable"
)

// DefaultTimeout bounds each query when none is configured.
const DefaultTimeout = 3 * time.Second

// SnapshotStore implements durable.Store over the generate_snapshots table.
type SnapshotStore struct {
	db       DBTX
	key      string
	timeout  time.Duration
	capacity int
	logger   *slog.Logger
}

// SnapshotStoreOptions tunes the stores built by SnapshotFactory.
type SnapshotStoreOptions struct {
	Timeout  time.Duration
	Capacity int
	Logger   *slog.Logger
}

// NewSnapshotStore creates a SnapshotStore bound to key.
func NewSnapshotStore(db DBTX, key string, opts SnapshotStoreOptions) *SnapshotStore {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &SnapshotStore{
		db:       db,
		key:      key,
		timeout:  opts.Timeout,
		capacity: opts.Capacity,
		logger:   opts.Logger.With("component", "snapshot_store", "key", key),
	}
}

// SnapshotFactory returns a durable.Factory producing SnapshotStores that
// share db.
func SnapshotFactory(db DBTX, opts SnapshotStoreOptions) durable.Factory {
	return func(key string) durable.Store {
		return NewSnapshotStore(db, key, opts)
	}
}

// Read returns the payload stored under the key.
func (s *SnapshotStore) Read() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	query := `
		SELECT payload
		FROM generate_snapshots
		WHERE key = $1
	`

	var payload []byte
	if err := s.db.QueryRowContext(ctx, query, s.key).Scan(&payload); err != nil {
		mapped := MapError(err)
		if !IsNotFoundError(mapped) {
			s.logger.Debug("snapshot query failed", "error", err)
		}
		return nil, durable.NewStoreError(durable.OpRead, s.key, mapped)
	}
	return payload, nil
}

// Write upserts the payload under the key.
func (s *SnapshotStore) Write(raw []byte) error {
	if s.capacity > 0 && len(raw) > s.capacity {
		return durable.NewStoreError(durable.OpWrite, s.key,
			fmt.Errorf("%w: %d bytes exceeds %d", durable.ErrQuotaExceeded, len(raw), s.capacity))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	query := `
		INSERT INTO generate_snapshots (key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, s.key, raw, time.Now().UTC()); err != nil {
		return durable.NewStoreError(durable.OpWrite, s.key, MapError(err))
	}
	return nil
}

// Erase deletes the row. Deleting an absent row succeeds.
func (s *SnapshotStore) Erase() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	query := `DELETE FROM generate_snapshots WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, s.key); err != nil {
		return durable.NewStoreError(durable.OpErase, s.key, MapError(err))
	}
	return nil
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// ListSnapshots returns every stored snapshot, most recently updated first.
func ListSnapshots(ctx context.Context, db DBTX) ([]SnapshotInfo, error) {
	query := `
		SELECT key, octet_length(payload), updated_at
		FROM generate_snapshots
		ORDER BY updated_at DESC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Key, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return out, nil
}
