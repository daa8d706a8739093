package workspace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"spacedesk/internal/space"
)

const workspaceTable = "space_workspaces"

const createWorkspaceTable = `CREATE TABLE IF NOT EXISTS space_workspaces (
	workspace_id TEXT PRIMARY KEY,
	version BIGINT NOT NULL DEFAULT 0,
	snapshot JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps one JSONB snapshot row per workspace.
type PostgresStore struct {
	drv *entsql.Driver

	schema initGate
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{drv: entsql.OpenDB(dialect.Postgres, db)}
}

// OpenPostgres opens and pings a pgx-backed database for dsn.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) Load(ctx context.Context, workspaceID string) (space.Snapshot, bool, error) {
	if s == nil || s.drv == nil {
		return space.Snapshot{}, false, fmt.Errorf("store is nil")
	}
	wid, err := RequireWorkspaceID(workspaceID)
	if err != nil {
		return space.Snapshot{}, false, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return space.Snapshot{}, false, err
	}

	query, args := entsql.Dialect(dialect.Postgres).
		Select("snapshot").
		From(entsql.Table(workspaceTable)).
		Where(entsql.EQ("workspace_id", wid)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return space.Snapshot{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return space.Snapshot{}, false, rows.Err()
	}
	var raw []byte
	if err := rows.Scan(&raw); err != nil {
		return space.Snapshot{}, false, err
	}
	var snap space.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return space.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", wid, err)
	}
	return snap, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, workspaceID string, snap space.Snapshot) error {
	if s == nil || s.drv == nil {
		return fmt.Errorf("store is nil")
	}
	wid, err := RequireWorkspaceID(workspaceID)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.Postgres).
		Insert(workspaceTable).
		Columns("workspace_id", "version", "snapshot", "updated_at").
		Values(wid, snap.Version, string(raw), time.Now()).
		OnConflict(
			entsql.ConflictColumns("workspace_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	return s.drv.Exec(ctx, query, args, nil)
}

func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	if s == nil || s.drv == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query, args := entsql.Dialect(dialect.Postgres).
		Select("workspace_id").
		From(entsql.Table(workspaceTable)).
		OrderBy("workspace_id").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s == nil || s.drv == nil {
		return nil
	}
	return s.drv.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	return s.schema.Do(ctx, func(ctx context.Context) error {
		return s.drv.Exec(ctx, createWorkspaceTable, []any{}, nil)
	})
}
