package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"golang.org/x/time/rate"

	"github.com/xraph/deque"
)

// Pushes compute the next pos inside the INSERT itself, so one statement
// both reads the current extreme and claims the slot. The unique
// (key, pos) index turns a lost race between concurrent pushers into a
// unique_violation, and the loser recomputes; each retry makes progress
// because some pusher's INSERT committed.

// PushTail appends value after the current maximum pos.
func (s *Store) PushTail(ctx context.Context, key string, value []byte) error {
	return s.push(ctx, key, value, `
		INSERT INTO deque_items (key, pos, value)
		SELECT ?, COALESCE(MAX(pos), 0) + 1, ? FROM deque_items WHERE key = ?
	`)
}

// PushHead prepends value before the current minimum pos.
func (s *Store) PushHead(ctx context.Context, key string, value []byte) error {
	return s.push(ctx, key, value, `
		INSERT INTO deque_items (key, pos, value)
		SELECT ?, COALESCE(MIN(pos), 0) - 1, ? FROM deque_items WHERE key = ?
	`)
}

func (s *Store) push(ctx context.Context, key string, value []byte, query string) error {
	for {
		_, err := s.db.ExecContext(ctx, query, key, value, key)
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return fmt.Errorf("deque/bun: push: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// ──────────────────────────────────────────────────
// Pops
// ──────────────────────────────────────────────────

// popQuery deletes the extreme row and returns its value. SKIP LOCKED
// sidesteps rows another popper holds, the usual claim pattern for SQL
// work queues.
const popQuery = `
	DELETE FROM deque_items d
	USING (
		SELECT id FROM deque_items
		WHERE key = ?
		ORDER BY pos %s
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	) sel
	WHERE d.id = sel.id
	RETURNING d.value
`

// PopTail removes and returns the highest-pos value.
func (s *Store) PopTail(ctx context.Context, key string) ([]byte, bool, error) {
	return s.pop(ctx, key, false)
}

// PopHead removes and returns the lowest-pos value.
func (s *Store) PopHead(ctx context.Context, key string) ([]byte, bool, error) {
	return s.pop(ctx, key, true)
}

func (s *Store) pop(ctx context.Context, key string, head bool) ([]byte, bool, error) {
	order := "DESC"
	if head {
		order = "ASC"
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(popQuery, order), key).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/bun: pop: %w", err)
	}
	return value, true, nil
}

// PopTailWait polls PopTail until a value arrives or timeout elapses.
// The poll cadence is paced by a token-bucket limiter so an idle wait
// costs one query per poll interval.
func (s *Store) PopTailWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	return s.popWait(ctx, key, timeout, false)
}

// PopHeadWait is the head-side counterpart of PopTailWait.
func (s *Store) PopHeadWait(ctx context.Context, key string, timeout time.Duration) ([]byte, bool, error) {
	return s.popWait(ctx, key, timeout, true)
}

func (s *Store) popWait(ctx context.Context, key string, timeout time.Duration, head bool) ([]byte, bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(s.pollInterval), 1)
	for {
		v, ok, err := s.pop(ctx, key, head)
		if ok || err != nil {
			return v, ok, err
		}
		if err := limiter.Wait(waitCtx); err != nil {
			// The caller's own context failing is an error; our
			// deadline expiring is just an empty result.
			if ctx.Err() != nil {
				return nil, false, ctx.Err()
			}
			return nil, false, nil
		}
	}
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// Len counts the rows for key.
func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	n, err := s.db.NewSelect().
		Model((*itemModel)(nil)).
		Where("key = ?", key).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("deque/bun: len: %w", err)
	}
	return int64(n), nil
}

// Index returns the value at index; negative indices count from the tail.
func (s *Store) Index(ctx context.Context, key string, index int64) ([]byte, bool, error) {
	var m itemModel
	err := s.indexQuery(key, index, &m).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/bun: index: %w", err)
	}
	return m.Value, true, nil
}

// SetIndex overwrites the value at index in one statement: the target
// row is resolved and updated atomically, and zero rows affected means
// the index is out of range.
func (s *Store) SetIndex(ctx context.Context, key string, index int64, value []byte) error {
	order, offset := "ASC", index
	if index < 0 {
		order, offset = "DESC", -index-1
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE deque_items SET value = ? WHERE id = (
			SELECT id FROM deque_items
			WHERE key = ?
			ORDER BY pos %s
			LIMIT 1 OFFSET ?
		)
	`, order), value, key, offset)
	if err != nil {
		return fmt.Errorf("deque/bun: set index: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deque/bun: set index %d: %w", index, deque.ErrIndexOutOfRange)
	}
	return nil
}

// indexQuery selects the single row at the given logical index.
func (s *Store) indexQuery(key string, index int64, m *itemModel) *bun.SelectQuery {
	q := s.db.NewSelect().Model(m).Where("key = ?", key).Limit(1)
	if index >= 0 {
		return q.Order("pos ASC").Offset(int(index))
	}
	return q.Order("pos DESC").Offset(int(-index - 1))
}

// Range returns all values for key ordered head to tail.
func (s *Store) Range(ctx context.Context, key string) ([][]byte, error) {
	var models []itemModel
	err := s.db.NewSelect().
		Model(&models).
		Where("key = ?", key).
		Order("pos ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("deque/bun: range: %w", err)
	}

	out := make([][]byte, len(models))
	for i, m := range models {
		out[i] = m.Value
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

// RemoveAll deletes every row for key whose value matches.
func (s *Store) RemoveAll(ctx context.Context, key string, value []byte) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*itemModel)(nil)).
		Where("key = ?", key).
		Where("value = ?", value).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("deque/bun: remove all: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deque/bun: remove all: %w", err)
	}
	return n, nil
}

// RotateTailToHead moves the tail row in front of the head by giving it
// pos = min-1 inside one transaction.
func (s *Store) RotateTailToHead(ctx context.Context, key string) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var tail itemModel
		err := tx.NewSelect().
			Model(&tail).
			Where("key = ?", key).
			Order("pos DESC").
			Limit(1).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if isNoRows(err) {
				return nil // empty list, no-op
			}
			return err
		}

		var minPos int64
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MIN(pos), 0) FROM deque_items WHERE key = ?`, key,
		).Scan(&minPos)
		if err != nil {
			return err
		}
		if minPos == tail.Pos {
			return nil // single element, already both head and tail
		}

		_, err = tx.NewUpdate().
			Model((*itemModel)(nil)).
			Set("pos = ?", minPos-1).
			Where("id = ?", tail.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("deque/bun: rotate: %w", err)
	}
	return nil
}

// Delete removes every row for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*itemModel)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("deque/bun: delete: %w", err)
	}
	return nil
}
