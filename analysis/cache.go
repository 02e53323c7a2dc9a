package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/provider"
)

const cacheKeyPrefix = "analysis:"

// CacheObserver records cache lookups. metrics.Registry satisfies it.
type CacheObserver interface {
	ObserveCache(result string)
}

// CachedEngine memoizes successful analyses by transcript content.
// Fallback results and failures are never stored. Store errors are logged
// and otherwise ignored.
type CachedEngine struct {
	engine   *Engine
	store    provider.ContextStore[Result]
	ttl      time.Duration
	observer CacheObserver
	log      *logger.Logger
}

var _ Analyzer = (*CachedEngine)(nil)

// NewCachedEngine wraps engine with store. A zero ttl never expires.
func NewCachedEngine(engine *Engine, store provider.ContextStore[Result], ttl time.Duration, obs CacheObserver) *CachedEngine {
	return &CachedEngine{
		engine:   engine,
		store:    store,
		ttl:      ttl,
		observer: obs,
		log:      engine.log,
	}
}

// CacheKey returns the store key for a transcript.
func CacheKey(transcript string) string {
	sum := sha256.Sum256([]byte(transcript))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Analyze behaves like Engine.Analyze with a cache in front.
func (c *CachedEngine) Analyze(ctx context.Context, transcript string) (Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return Result{}, ErrEmptyTranscript
	}
	out := c.Run(ctx, transcript)
	if out.Err != nil && !out.Fallback {
		return Result{}, out.Err
	}
	return out.Result, nil
}

// Run returns a cached Result when present, otherwise runs the engine and
// stores a successful Result.
func (c *CachedEngine) Run(ctx context.Context, transcript string) Outcome {
	key := CacheKey(transcript)
	log := c.log.WithContext(ctx)

	cached, err := c.store.Load(ctx, key)
	switch {
	case err != nil:
		c.observe("error")
		log.Warn("analysis cache load failed", logger.ErrorFields("cache_load", err))
	case cached != nil:
		c.observe("hit")
		return Outcome{Result: *cached, Cached: true}
	default:
		c.observe("miss")
	}

	out := c.engine.Run(ctx, transcript)
	if out.Err == nil && !out.Fallback {
		if err := c.store.Save(ctx, key, &out.Result, c.ttl); err != nil {
			log.Warn("analysis cache save failed", logger.ErrorFields("cache_save", err))
		}
	}
	return out
}

// QuickSummarize is not cached.
func (c *CachedEngine) QuickSummarize(ctx context.Context, transcript string) string {
	return c.engine.QuickSummarize(ctx, transcript)
}

func (c *CachedEngine) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveCache(result)
	}
}
