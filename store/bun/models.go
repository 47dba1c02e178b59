package bunstore

import "github.com/uptrace/bun"

// itemModel is one list element. pos orders elements within a key and is
// unique per (key, pos); id exists only to give DELETE ... RETURNING a
// stable row handle.
type itemModel struct {
	bun.BaseModel `bun:"table:deque_items"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Key   string `bun:"key,notnull"`
	Pos   int64  `bun:"pos,notnull"`
	Value []byte `bun:"value,notnull,type:bytea"`
}
