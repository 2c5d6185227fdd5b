package submit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

type dialect struct {
	driver string
	ddl    string
	insert string
	recent string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		ddl: `CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
		insert: `INSERT INTO submissions (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		recent: `SELECT id, kind, payload, created_at FROM submissions ORDER BY created_at DESC, id LIMIT ?`,
	}
	postgresDialect = dialect{
		driver: "pgx",
		ddl: `CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at BIGINT NOT NULL
	)`,
		insert: `INSERT INTO submissions (id, kind, payload, created_at) VALUES ($1, $2, $3, $4)`,
		recent: `SELECT id, kind, payload::text, created_at FROM submissions ORDER BY created_at DESC, id LIMIT $1`,
	}
)

// SQLStore writes submissions to a submissions table in SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     *zap.Logger
	now     func() time.Time
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLStore, error) {
	if path == "" {
		path = "hwai.db"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	return openSQL(ctx, sqliteDialect, path, log)
}

// OpenPostgres connects to Postgres through the pgx driver.
func OpenPostgres(ctx context.Context, dsn string, log *zap.Logger) (*SQLStore, error) {
	return openSQL(ctx, postgresDialect, dsn, log)
}

func openSQL(ctx context.Context, d dialect, dsn string, log *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.driver, err)
	}
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create submissions table: %w", err)
	}
	log.Debug("submissions store ready", zap.String("driver", d.driver))
	return &SQLStore{db: db, dialect: d, log: log, now: time.Now}, nil
}

func (s *SQLStore) Submit(ctx context.Context, kind Kind, payload any) (string, error) {
	sub, err := newSubmission(kind, payload, s.now())
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.insert,
		sub.ID, string(sub.Kind), string(sub.Payload), sub.CreatedAt.UnixMilli()); err != nil {
		return "", fmt.Errorf("insert %s submission: %w", kind, err)
	}
	s.log.Info("submission stored", zap.String("id", sub.ID), zap.String("kind", string(kind)))
	return sub.ID, nil
}

// Recent returns up to limit submissions, newest first.
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.recent, limit)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Submission
	for rows.Next() {
		var (
			sub     Submission
			kind    string
			payload string
			created int64
		)
		if err := rows.Scan(&sub.ID, &kind, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sub.Kind = Kind(kind)
		sub.Payload = []byte(payload)
		sub.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sub)
	}
	return out, rows.Err()
}

// DB exposes the underlying handle for tests.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }
