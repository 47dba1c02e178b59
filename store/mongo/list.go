package mongo

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/time/rate"

	"github.com/xraph/deque"
)

// PushTail appends value to the items array, creating the document on
// first push.
func (s *Store) PushTail(ctx context.Context, key string, value []byte) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$push": bson.M{"items": value}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("deque/mongo: push tail: %w", err)
	}
	return nil
}

// PushHead prepends value via $position 0.
func (s *Store) PushHead(ctx context.Context, key string, value []byte) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$push": bson.M{"items": bson.M{
			"$each":     bson.A{value},
			"$position": 0,
		}}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("deque/mongo: push head: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Pops
// ──────────────────────────────────────────────────

// PopTail removes and returns the last array element. FindOneAndUpdate
// with $pop is one atomic document operation; the popped value is read
// from the pre-image.
func (s *Store) PopTail(ctx context.Context, key string) ([]byte, bool, error) {
	return s.pop(ctx, key, false)
}

// PopHead removes and returns the first array element.
func (s *Store) PopHead(ctx context.Context, key string) ([]byte, bool, error) {
	return s.pop(ctx, key, true)
}

func (s *Store) pop(ctx context.Context, key string, head bool) ([]byte, bool, error) {
	popDir := 1 // $pop 1 removes the last element
	if head {
		popDir = -1
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var doc listDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": key, "items.0": bson.M{"$exists": true}},
		bson.M{"$pop": bson.M{"items": popDir}},
		opts,
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("deque/mongo: pop: %w", err)
	}

	if head {
		return doc.Items[0], true, nil
	}
	return doc.Items[len(doc.Items)-1], true, nil
}

// PopTailWait polls PopTail until a value arrives or timeout elapses,
// paced by a token-bucket limiter.
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

// Len returns the array size via a $size projection.
func (s *Store) Len(ctx context.Context, key string) (int64, error) {
	cur, err := s.col.Aggregate(ctx, mongod.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": key}}},
		bson.D{{Key: "$project", Value: bson.M{
			"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$items", bson.A{}}}},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("deque/mongo: len: %w", err)
	}
	defer cur.Close(ctx)

	var res struct {
		N int64 `bson:"n"`
	}
	if cur.Next(ctx) {
		if decErr := cur.Decode(&res); decErr != nil {
			return 0, fmt.Errorf("deque/mongo: len decode: %w", decErr)
		}
	}
	if err := cur.Err(); err != nil {
		return 0, fmt.Errorf("deque/mongo: len: %w", err)
	}
	return res.N, nil
}

// Index returns the value at index via $arrayElemAt, which accepts
// negative indices natively. The array size rides along so an
// out-of-range index is distinguishable from a stored empty value.
func (s *Store) Index(ctx context.Context, key string, index int64) ([]byte, bool, error) {
	cur, err := s.col.Aggregate(ctx, mongod.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": key}}},
		bson.D{{Key: "$project", Value: bson.M{
			"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$items", bson.A{}}}},
			"v": bson.M{"$arrayElemAt": bson.A{bson.M{"$ifNull": bson.A{"$items", bson.A{}}}, index}},
		}}},
	})
	if err != nil {
		return nil, false, fmt.Errorf("deque/mongo: index: %w", err)
	}
	defer cur.Close(ctx)

	var res struct {
		N int64  `bson:"n"`
		V []byte `bson:"v"`
	}
	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, false, fmt.Errorf("deque/mongo: index: %w", err)
		}
		return nil, false, nil
	}
	if err := cur.Decode(&res); err != nil {
		return nil, false, fmt.Errorf("deque/mongo: index decode: %w", err)
	}

	if _, ok := normalize(index, res.N); !ok {
		return nil, false, nil
	}
	return res.V, true, nil
}

// Range returns the whole items array.
func (s *Store) Range(ctx context.Context, key string) ([][]byte, error) {
	var doc listDoc
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("deque/mongo: range: %w", err)
	}
	return doc.Items, nil
}

// ──────────────────────────────────────────────────
// Writes
// ──────────────────────────────────────────────────

// SetIndex overwrites the value at index. A negative index is resolved
// against the current length first (one extra read), then the update
// itself guards the positional path with $exists so a concurrent shrink
// still yields the range error instead of growing the array.
func (s *Store) SetIndex(ctx context.Context, key string, index int64, value []byte) error {
	idx := index
	if idx < 0 {
		n, err := s.Len(ctx, key)
		if err != nil {
			return err
		}
		var ok bool
		idx, ok = normalize(index, n)
		if !ok {
			return fmt.Errorf("deque/mongo: set index %d: %w", index, deque.ErrIndexOutOfRange)
		}
	}

	field := fmt.Sprintf("items.%d", idx)
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key, field: bson.M{"$exists": true}},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return fmt.Errorf("deque/mongo: set index %d: %w", index, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("deque/mongo: set index %d: %w", index, deque.ErrIndexOutOfRange)
	}
	return nil
}

// RemoveAll strips every occurrence via one atomic $pull; the count
// comes from the pre-image.
func (s *Store) RemoveAll(ctx context.Context, key string, value []byte) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var doc listDoc
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$pull": bson.M{"items": value}},
		opts,
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("deque/mongo: remove all: %w", err)
	}

	var removed int64
	for _, item := range doc.Items {
		if bytes.Equal(item, value) {
			removed++
		}
	}
	return removed, nil
}

// RotateTailToHead rebuilds the array as [tail, rest...] in a single
// aggregation-pipeline update, which MongoDB applies atomically. Lists
// shorter than two elements pass through unchanged.
func (s *Store) RotateTailToHead(ctx context.Context, key string) error {
	items := bson.M{"$ifNull": bson.A{"$items", bson.A{}}}
	rotated := bson.M{"$concatArrays": bson.A{
		bson.M{"$slice": bson.A{"$items", -1}},
		bson.M{"$slice": bson.A{"$items", 0, bson.M{"$subtract": bson.A{bson.M{"$size": "$items"}, 1}}}},
	}}

	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": key},
		mongod.Pipeline{
			bson.D{{Key: "$set", Value: bson.M{
				"items": bson.M{"$cond": bson.A{
					bson.M{"$gt": bson.A{bson.M{"$size": items}, 1}},
					rotated,
					items,
				}},
			}}},
		},
	)
	if err != nil {
		return fmt.Errorf("deque/mongo: rotate: %w", err)
	}
	return nil
}

// Delete removes the list document.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("deque/mongo: delete: %w", err)
	}
	return nil
}

// normalize resolves a possibly-negative index against length n.
func normalize(index, n int64) (int64, bool) {
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return 0, false
	}
	return index, true
}
