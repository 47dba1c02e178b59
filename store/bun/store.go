package bunstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/xraph/deque/store"
)

// Ensure Store implements store.List at compile time.
var _ store.List = (*Store)(nil)

// defaultPollInterval paces the blocking-pop poll loop. SQL has no
// native blocking pop, so Wait pops re-query at this cadence.
const defaultPollInterval = 50 * time.Millisecond

// Store is a Bun ORM implementation of store.List using PostgreSQL
// dialect. Each list element is one row keyed by (key, pos); pos is a
// sparse ordering column that grows downward on head pushes and upward
// on tail pushes, so neither end ever rewrites existing rows.
// The caller owns the *bun.DB lifecycle; Store never closes it.
type Store struct {
	db           *bun.DB
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPollInterval sets how often blocking pops re-query the table.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// New creates a new Bun store. The caller owns the db lifecycle — the
// Store will not close it on Close().
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{
		db:           db,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying *bun.DB for advanced usage.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Migrate creates the items table and its ordering index.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*itemModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deque/bun: create table: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS deque_items_key_pos
		ON deque_items (key, pos)
	`)
	if err != nil {
		return fmt.Errorf("deque/bun: create index: %w", err)
	}

	s.logger.Info("migrated deque schema", "table", "deque_items")
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op because the caller owns the *bun.DB lifecycle.
func (s *Store) Close() error {
	return nil
}
