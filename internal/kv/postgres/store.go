// Package postgres stores kv entries in a single Postgres table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/snapedit/backend/internal/kv"
)

const defaultMaxAttempts = 3

// Store implements kv.Store over the kv_entries table.
type Store struct {
	db          *sql.DB
	log         zerolog.Logger
	maxAttempts int
}

// New wraps an open database. The schema is created by the migrations package.
func New(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:          db,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
}

// View runs fn in a read-only serializable transaction.
func (s *Store) View(ctx context.Context, fn func(tx kv.Tx) error) error {
	return s.run(ctx, true, fn)
}

// Update runs fn in a serializable transaction, retrying on serialization
// failures and deadlocks. fn may therefore run more than once.
func (s *Store) Update(ctx context.Context, fn func(tx kv.Tx) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.run(ctx, false, fn)
		if !isRetryable(err) {
			return err
		}
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("serialization conflict, retrying")
	}
	return fmt.Errorf("kv update failed after %d attempts: %w", s.maxAttempts, err)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(tx kv.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable, ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{tx: sqlTx, readOnly: readOnly}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// serialization_failure, deadlock_detected
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

type tx struct {
	tx       *sql.Tx
	readOnly bool
}

func (t *tx) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`
	if !t.readOnly {
		query += ` FOR UPDATE`
	}

	var value []byte
	err := t.tx.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (t *tx) Put(ctx context.Context, key string, value []byte) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (t *tx) Delete(ctx context.Context, key string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (t *tx) Scan(ctx context.Context, prefix string) ([]kv.Entry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT key, value FROM kv_entries
		WHERE key LIKE $1
		ORDER BY key COLLATE "C"`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	defer rows.Close()

	var entries []kv.Entry
	for rows.Next() {
		var e kv.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
