package pipeline

import "context"

// iterFunc adapts a next function to Iterator; Close closes the source.
type iterFunc[T any] struct {
	next  func(ctx context.Context) (T, bool, error)
	close func() error
}

func (it iterFunc[T]) Next(ctx context.Context) (T, bool, error) { return it.next(ctx) }
func (it iterFunc[T]) Close() error                              { return it.close() }

// derive builds a stage whose iterator is produced from the source's.
func derive[I, O any](p *Pipeline[I], stage func(src Iterator[I]) Iterator[O]) *Pipeline[O] {
	return &Pipeline[O]{create: func(ctx context.Context) Iterator[O] {
		return stage(p.create(ctx))
	}}
}

// Filter drops values for which keep returns false.
func Filter[T any](p *Pipeline[T], keep func(T) bool) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return iterFunc[T]{close: src.Close, next: func(ctx context.Context) (T, bool, error) {
			for {
				v, ok, err := src.Next(ctx)
				if err != nil || !ok || keep(v) {
					return v, ok, err
				}
			}
		}}
	})
}

// Tap runs fn on each value before passing it on. An error from fn ends
// the stream, so Tap can also gate values (e.g. wait while paused).
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return derive(p, func(src Iterator[T]) Iterator[T] {
		return iterFunc[T]{close: src.Close, next: func(ctx context.Context) (T, bool, error) {
			v, ok, err := src.Next(ctx)
			if err != nil || !ok {
				return v, ok, err
			}
			if err := fn(ctx, v); err != nil {
				var zero T
				return zero, false, err
			}
			return v, true, nil
		}}
	})
}

// FlatMap expands each value into a sub-stream and concatenates them.
func FlatMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (Iterator[O], error)) *Pipeline[O] {
	return derive(p, func(src Iterator[I]) Iterator[O] {
		var cur Iterator[O]
		closeCur := func() {
			if cur != nil {
				_ = cur.Close()
				cur = nil
			}
		}
		return iterFunc[O]{
			close: func() error {
				closeCur()
				return src.Close()
			},
			next: func(ctx context.Context) (O, bool, error) {
				var zero O
				for {
					if cur != nil {
						v, ok, err := cur.Next(ctx)
						if err != nil {
							return zero, false, err
						}
						if ok {
							return v, true, nil
						}
						closeCur()
					}
					in, ok, err := src.Next(ctx)
					if err != nil || !ok {
						return zero, false, err
					}
					if cur, err = fn(ctx, in); err != nil {
						return zero, false, err
					}
				}
			},
		}
	})
}
