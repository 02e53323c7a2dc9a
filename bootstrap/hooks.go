package bootstrap

import (
	"context"
	"fmt"
)

// Hook runs at a lifecycle point. A startup hook error aborts Run.
type Hook func(ctx context.Context) error

// OnStart adds hooks that run once every component has started.
func (a *App[C]) OnStart(hooks ...Hook) { a.onStart = append(a.onStart, hooks...) }

// OnReady adds hooks that run after the ready check, before the summary.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop adds hooks that run on shutdown ahead of the components, e.g.
// flushing telemetry while the Redis connection is still open.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

func runHooks(ctx context.Context, stage string, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook #%d: %w", stage, i+1, err)
		}
	}
	return nil
}
