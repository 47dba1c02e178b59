package deque

import (
	"context"
	"errors"
	"time"
)

// The exclusive policy, enabled by the [Exclusive] option. It decorates
// the four mutating operations with an at-most-once membership rule and
// leaves everything else untouched. Both halves of each decorated
// operation are atomic store calls; the composition is not, so the
// guarantee holds only at quiescence with a single logical caller.

// appendExclusive pushes value only if it is not already present. The
// membership scan and the push are two separate store calls; a
// concurrent writer can insert a duplicate between them.
func (q *Queue) appendExclusive(ctx context.Context, value []byte, head bool) error {
	present, err := q.Contains(ctx, value)
	if err != nil {
		return err
	}
	if present {
		q.logger.Debug("exclusive append skipped, value present", "key", q.key)
		return nil
	}
	if head {
		return q.list.PushHead(ctx, q.key, value)
	}
	return q.list.PushTail(ctx, q.key, value)
}

// popExclusive pops one end, then strips any remaining occurrences of
// the returned value. The Remove miss (ErrNotFound) is the expected case
// when the popped value was unique and is swallowed; any other Remove
// failure is returned alongside the value, which has already left the
// store and would otherwise be lost.
func (q *Queue) popExclusive(ctx context.Context, timeout time.Duration, head bool) ([]byte, bool, error) {
	var (
		value []byte
		ok    bool
		err   error
	)
	if head {
		value, ok, err = q.popHead(ctx, timeout)
	} else {
		value, ok, err = q.popTail(ctx, timeout)
	}
	if err != nil || !ok {
		return value, ok, err
	}

	if _, err := q.Remove(ctx, value); err != nil && !errors.Is(err, ErrNotFound) {
		return value, true, err
	}
	return value, true, nil
}
