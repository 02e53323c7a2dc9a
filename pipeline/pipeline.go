package pipeline

import "context"

// Iterator is a pull-based stream. Next returns (zero, false, nil) once the
// stream is exhausted.
type Iterator[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

// Pipeline is a lazy stream description. Every Iter or ForEach builds a
// fresh iterator chain.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Iter starts the pipeline. The caller closes the iterator.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return p.create(ctx)
}

// FromSlice streams items in order.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{create: func(context.Context) Iterator[T] {
		i := 0
		return iterFunc[T]{close: noClose, next: func(ctx context.Context) (T, bool, error) {
			var zero T
			if err := ctx.Err(); err != nil {
				return zero, false, err
			}
			if i >= len(items) {
				return zero, false, nil
			}
			i++
			return items[i-1], true, nil
		}}
	}}
}

func noClose() error { return nil }

// ForEach runs p, calling fn for every value. It stops at the end of the
// stream, on the first error from the stream or fn, or when ctx is done.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	it := p.create(ctx)
	defer it.Close()
	for {
		v, ok, err := it.Next(ctx)
		if err != nil || !ok {
			return err
		}
		if err := fn(ctx, v); err != nil {
			return err
		}
	}
}
