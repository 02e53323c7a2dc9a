package pipeline

import (
	"context"
	"time"
)

// Pace delays values so consecutive ones are at least interval apart. The
// first value is not delayed and nothing is dropped.
func Pace[T any](p *Pipeline[T], interval time.Duration) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		var last time.Time
		return iterFunc[T]{close: src.Close, next: func(ctx context.Context) (T, bool, error) {
			v, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return v, ok, err
			}
			if !last.IsZero() {
				if err := sleep(ctx, interval-time.Since(last)); err != nil {
					var zero T
					return zero, false, err
				}
			}
			last = time.Now()
			return v, true, nil
		}}
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
