// Package redis wraps go-redis for meetingmind: a pooled Client, a JSON
// TypedStore that satisfies provider.ContextStore (used as the analysis
// result cache) and a lifecycle Component.
//
//	client, err := redis.New(cfg, log)
//	store := redis.NewTypedStore[analysis.Result](client, cfg.KeyPrefix)
//	cached := analysis.NewCachedEngine(engine, store, ttl, metrics)
package redis
