package mongo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/deque/store"
)

// Ensure Store implements store.List at compile time.
var _ store.List = (*Store)(nil)

// colLists is the collection holding one document per list key.
const colLists = "deque_lists"

// defaultPollInterval paces the blocking-pop poll loop. MongoDB has no
// blocking array pop, so Wait pops re-query at this cadence.
const defaultPollInterval = 50 * time.Millisecond

// Store is a MongoDB implementation of store.List. Each key is one
// document {_id: key, items: [...]}; every primitive is a single
// document-level operation, which MongoDB applies atomically.
// The caller owns the client lifecycle; Store never disconnects it.
type Store struct {
	col          *mongod.Collection
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithPollInterval sets how often blocking pops re-query the collection.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// New creates a MongoDB-backed list store on the deque_lists collection
// of db.
func New(db *mongod.Database, opts ...Option) *Store {
	s := &Store{
		col:          db.Collection(colLists),
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ping checks MongoDB connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.col.Database().Client().Ping(ctx, nil)
}

// listDoc is the persisted shape of one list.
type listDoc struct {
	ID    string   `bson:"_id"`
	Items [][]byte `bson:"items"`
}

// isNoDocuments returns true when err indicates no matching document.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}
