// Package mongo implements store.List on MongoDB array documents via
// mongo-driver/v2. Each deque key is one document {_id: key, items:
// [...]}, so every primitive is a single document-level operation and
// inherits MongoDB's per-document atomicity: pops use FindOneAndUpdate
// with $pop, remove-all uses $pull, and rotation is an
// aggregation-pipeline update.
//
// MongoDB has no blocking array pop, so the Wait pop variants poll at a
// configurable interval.
//
// The caller owns the client lifecycle -- mongo never disconnects it.
// Pass the database handle through the constructor:
//
//	import (
//	    mongod "go.mongodb.org/mongo-driver/v2/mongo"
//	    mongostore "github.com/xraph/deque/store/mongo"
//	)
//
//	client, err := mongod.Connect(options.Client().ApplyURI(uri))
//	s := mongostore.New(client.Database("app"))
//	if err := s.Ping(ctx); err != nil { ... }
package mongo
