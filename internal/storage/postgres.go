package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"

	"govwatcher/internal/errkind"
	"govwatcher/internal/stagecache"
)

// PostgresStore keeps stage artifacts in a single table with one row per
// (video key, stage). Put is an upsert so re-running a stage replaces its
// artifact in place.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ stagecache.Store = (*PostgresStore)(nil)

// NewPostgresStore opens the database and ensures the artifact table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errkind.Wrap(errkind.Persistence, fmt.Errorf("open database: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errkind.Wrap(errkind.Persistence, fmt.Errorf("ping database: %w", err))
	}

	s := &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS stage_artifacts (
			video_key  TEXT NOT NULL,
			stage      TEXT NOT NULL,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (video_key, stage)
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errkind.Wrap(errkind.Persistence, fmt.Errorf("create stage_artifacts: %w", err))
	}
	return nil
}

// Put upserts the artifact row.
func (s *PostgresStore) Put(ctx context.Context, key string, stage stagecache.Stage, payload []byte) error {
	query, args, err := s.sb.
		Insert("stage_artifacts").
		Columns("video_key", "stage", "payload").
		Values(key, string(stage), payload).
		Suffix("ON CONFLICT (video_key, stage) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()").
		ToSql()
	if err != nil {
		return errkind.Wrap(errkind.Persistence, fmt.Errorf("build upsert: %w", err))
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errkind.Wrap(errkind.Persistence, fmt.Errorf("upsert artifact: %w", err))
	}
	return nil
}

// Get fetches the artifact row; no row reports stagecache.ErrAbsent.
func (s *PostgresStore) Get(ctx context.Context, key string, stage stagecache.Stage) ([]byte, error) {
	query, args, err := s.sb.
		Select("payload").
		From("stage_artifacts").
		Where(sq.Eq{"video_key": key, "stage": string(stage)}).
		ToSql()
	if err != nil {
		return nil, errkind.Wrap(errkind.Persistence, fmt.Errorf("build select: %w", err))
	}

	var payload []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stagecache.ErrAbsent
	}
	if err != nil {
		return nil, errkind.Wrap(errkind.Persistence, fmt.Errorf("select artifact: %w", err))
	}
	return payload, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
