package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sweepEvery controls how often a write piggybacks a cleanup of
// long-expired rows. Expired rows are already invisible to reads; the sweep
// only reclaims space.
const sweepEvery = 64

// Postgres is the production Store backed by the live_kv table. Expiry is
// enforced on read via expires_at, so correctness never depends on physical
// deletion.
type Postgres struct {
	pool   *pgxpool.Pool
	writes atomic.Uint64
}

// NewPostgres returns a Store over the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM live_kv
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, classify(fmt.Errorf("get %s: %w", key, err))
	}
	return value, nil
}

func (s *Postgres) Put(ctx context.Context, key string, value []byte) error {
	return s.put(ctx, key, value, nil)
}

func (s *Postgres) PutTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	return s.put(ctx, key, value, &expires)
}

func (s *Postgres) put(ctx context.Context, key string, value []byte, expires *time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO live_kv (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = now()`,
		key, value, expires)
	if err != nil {
		return classify(fmt.Errorf("put %s: %w", key, err))
	}
	if s.writes.Add(1)%sweepEvery == 0 {
		s.sweep(ctx)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM live_kv WHERE key = $1`, key)
	if err != nil {
		return classify(fmt.Errorf("delete %s: %w", key, err))
	}
	return nil
}

// sweep reclaims rows expired more than an hour ago. Best-effort.
func (s *Postgres) sweep(ctx context.Context) {
	_, _ = s.pool.Exec(ctx, `
		DELETE FROM live_kv WHERE expires_at IS NOT NULL AND expires_at < now() - interval '1 hour'`)
}

// classify wraps overload-shaped failures in TransientError so the retry
// wrapper can tell them apart from permanent ones.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization failure, deadlock
			return &TransientError{Err: err}
		}
		// Class 53: insufficient resources. Class 57: operator intervention.
		if len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "53" || pgErr.Code[:2] == "57") {
			return &TransientError{Err: err}
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransientError{Err: err}
	}
	return err
}
