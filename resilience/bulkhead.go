package resilience

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBulkheadFull is returned when no slot is free and MaxWait is zero.
	ErrBulkheadFull = errors.New("bulkhead is full")
	// ErrBulkheadTimeout is returned when MaxWait passes without a slot.
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

const defaultMaxConcurrent = 10

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	Name          string
	MaxConcurrent int
	// MaxWait bounds the wait for a slot. Zero rejects at once.
	MaxWait  time.Duration
	OnReject func(name string)
}

// Bulkhead caps concurrent calls, e.g. in-flight analyses per host.
type Bulkhead struct {
	name     string
	maxWait  time.Duration
	onReject func(string)
	slots    chan struct{}
}

// NewBulkhead creates a bulkhead. MaxConcurrent defaults to 10.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	n := cfg.MaxConcurrent
	if n <= 0 {
		n = defaultMaxConcurrent
	}
	return &Bulkhead{
		name:     cfg.Name,
		maxWait:  cfg.MaxWait,
		onReject: cfg.OnReject,
		slots:    make(chan struct{}, n),
	}
}

// Execute runs fn while holding a slot.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.enter(ctx); err != nil {
		if b.onReject != nil {
			b.onReject(b.name)
		}
		return err
	}
	defer func() { <-b.slots }()
	return fn()
}

// ExecuteWithResult is Execute for functions returning a value.
func ExecuteWithResult[T any](ctx context.Context, b *Bulkhead, fn func() (T, error)) (T, error) {
	var out T
	err := b.Execute(ctx, func() (err error) {
		out, err = fn()
		return err
	})
	return out, err
}

func (b *Bulkhead) enter(ctx context.Context) error {
	select {
	case b.slots <- struct{}{}:
		return nil
	default:
		if b.maxWait <= 0 {
			return ErrBulkheadFull
		}
	}

	wait := time.NewTimer(b.maxWait)
	defer wait.Stop()
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-wait.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse reports occupied slots.
func (b *Bulkhead) InUse() int { return len(b.slots) }

// Available reports free slots.
func (b *Bulkhead) Available() int { return cap(b.slots) - len(b.slots) }
