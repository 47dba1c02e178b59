// Package bunstore implements store.List using the Bun ORM with
// PostgreSQL dialect. Suitable when the queue should live next to the
// rest of an application's relational data instead of in a separate
// Redis.
//
// Each element is one row in deque_items, ordered by a sparse pos
// column. Pops claim their row with FOR UPDATE SKIP LOCKED, so
// concurrent consumers never double-deliver. SQL has no blocking pop,
// so the Wait variants poll at a configurable interval.
//
// The caller owns the *bun.DB lifecycle — bunstore never closes it.
// Pass the db handle through the constructor:
//
//	import (
//	    "github.com/uptrace/bun"
//	    "github.com/uptrace/bun/dialect/pgdialect"
//	    "github.com/uptrace/bun/driver/pgdriver"
//	    bunstore "github.com/xraph/deque/store/bun"
//	)
//
//	sqldb := sql.OpenDB(pgdriver.NewConnector(...))
//	db := bun.NewDB(sqldb, pgdialect.New())
//	s := bunstore.New(db)
//	s.Migrate(ctx)
package bunstore
