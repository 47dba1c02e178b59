package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/deque"
	"github.com/xraph/deque/store"
)

// Ensure Store implements store.List at compile time.
var _ store.List = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store implements store.List on Redis lists. Each key maps 1:1 onto a
// Redis list, so a deque built on this Store interoperates with anything
// else speaking RPUSH/LPOP to the same key.
type Store struct {
	client goredis.Cmdable
	logger *slog.Logger
}

// New creates a Redis-backed list store. The caller owns the Redis
// client lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{client: client, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.Cmdable { return s.client }

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// PushTail appends value via RPUSH.
func (s *Store) PushTail(ctx context.Context, key string, value []byte) error {
	if err := s.client.RPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("deque/redis: push tail: %w", err)
	}
	return nil
}

// PushHead prepends value via LPUSH.
func (s *Store) PushHead(ctx context.Context, key string, value []byte) error {
	if err := s.client.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("deque/redis: push head: %w", err)
	}
	return nil
}

// PopTail removes and returns the tail value via RPOP.
func (s *Store) PopTail(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.RPop(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/redis: pop tail: %w", err)
	}
	return v, true, nil
}

// PopHead removes and returns the head value via LPOP.
func (s *Store) PopHead(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.LPop(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/redis: pop head: %w", err)
	}
	return v, true, nil
}

// PopTailWait blocks in BRPOP until a value arrives or timeout elapses.
//
// BRPOP replies with a (key, value) pair because it can watch several
// keys at once; this adapter watches exactly one, so the key half is
// dropped and the reply is normalized to value-or-empty like PopTail.
func (s *Store) PopTailWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	res, err := s.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/redis: pop tail wait: %w", err)
	}
	return []byte(res[1]), true, nil
}

// PopHeadWait blocks in BLPOP until a value arrives or timeout elapses.
// The reply is normalized the same way as PopTailWait.
func (s *Store) PopHeadWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	res, err := s.client.BLPop(ctx, timeout, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/redis: pop head wait: %w", err)
	}
	return []byte(res[1]), true, nil
}

// Len returns the list length via LLEN.
func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("deque/redis: len: %w", err)
	}
	return n, nil
}

// Index returns the value at index via LINDEX. Redis already accepts
// negative indices counting from the tail.
func (s *Store) Index(ctx context.Context, key string, index int64) ([]byte, bool, error) {
	v, err := s.client.LIndex(ctx, key, index).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/redis: index: %w", err)
	}
	return v, true, nil
}

// SetIndex overwrites the value at index via LSET. Redis reports both an
// out-of-range index and a missing key as errors; both are translated to
// deque.ErrIndexOutOfRange.
func (s *Store) SetIndex(ctx context.Context, key string, index int64, value []byte) error {
	err := s.client.LSet(ctx, key, index, value).Err()
	if err != nil {
		if isRangeError(err) {
			return fmt.Errorf("deque/redis: set index %d: %v: %w", index, err, deque.ErrIndexOutOfRange)
		}
		return fmt.Errorf("deque/redis: set index %d: %w", index, err)
	}
	return nil
}

// Range returns the whole list via LRANGE 0 -1.
func (s *Store) Range(ctx context.Context, key string) ([][]byte, error) {
	members, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("deque/redis: range: %w", err)
	}
	out := make([][]byte, len(members))
	for i, m := range members {
		out[i] = []byte(m)
	}
	return out, nil
}

// RemoveAll deletes all occurrences via LREM with count 0.
func (s *Store) RemoveAll(ctx context.Context, key string, value []byte) (int64, error) {
	n, err := s.client.LRem(ctx, key, 0, value).Result()
	if err != nil {
		return 0, fmt.Errorf("deque/redis: remove all: %w", err)
	}
	return n, nil
}

// RotateTailToHead moves the tail to the head via LMOVE key key RIGHT
// LEFT, which Redis executes as one atomic command. An empty or missing
// list replies nil and is a no-op.
func (s *Store) RotateTailToHead(ctx context.Context, key string) error {
	err := s.client.LMove(ctx, key, key, "RIGHT", "LEFT").Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("deque/redis: rotate: %w", err)
	}
	return nil
}

// Delete removes the list via DEL.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("deque/redis: delete: %w", err)
	}
	return nil
}

// isRangeError matches the LSET failure modes: "ERR index out of range"
// on a live list and "ERR no such key" on a missing one. Redis errors
// carry no machine-readable code, so string matching is all there is.
func isRangeError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "index out of range") ||
		strings.Contains(msg, "no such key")
}
