// Package redis implements store.List on native Redis lists via
// go-redis/v9. Each deque key is one Redis list, and every primitive is
// a single Redis command (RPUSH, BLPOP, LREM, LMOVE, ...), so the
// atomicity the deque layer documents is exactly Redis command
// atomicity.
//
// The caller owns the client lifecycle -- redis never closes it. Pass
// any goredis.Cmdable through the constructor:
//
//	import (
//	    goredis "github.com/redis/go-redis/v9"
//	    redisstore "github.com/xraph/deque/store/redis"
//	)
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
//
// Blocking pops map to BRPOP/BLPOP server-side, so a waiting caller
// costs no polling traffic. Sub-second timeouts need Redis 6.0 or
// later; older servers round the timeout up to whole seconds.
package redis
