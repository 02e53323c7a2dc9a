package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/meetingmind/logger"
)

// Timeouts applied per component.
const (
	StopTimeout   = 10 * time.Second
	HealthTimeout = 5 * time.Second
)

// Registry starts components in registration order and stops them in
// reverse. Register a dependency before the components that use it.
type Registry struct {
	mu      sync.RWMutex
	order   []Component
	byName  map[string]Component
	running map[string]bool
	log     *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		byName:  map[string]Component{},
		running: map[string]bool{},
		log:     log.WithComponent("registry"),
	}
}

// Register adds c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %q already registered", name)
	}
	r.order = append(r.order, c)
	r.byName[name] = c
	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// Get returns the named component, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// StartAll starts components until one fails. Those already running stay
// running so StopAll can release them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Info("Starting components", logger.Fields("count", len(r.order)))
	for _, c := range r.order {
		name := c.Name()
		if err := c.Start(ctx); err != nil {
			r.log.Error("Component failed to start", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			return fmt.Errorf("start %s: %w", name, err)
		}
		r.running[name] = true
		r.log.Debug("Component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops running components last-first, giving each StopTimeout,
// and joins their errors.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.order[i]
		name := c.Name()
		if !r.running[name] {
			continue
		}
		delete(r.running, name)

		stopCtx, cancel := context.WithTimeout(ctx, StopTimeout)
		err := c.Stop(stopCtx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			r.log.Error("Component failed to stop", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			continue
		}
		r.log.Info("Component stopped", logger.Fields(logger.FieldComponent, name))
	}
	return errors.Join(errs...)
}

// HealthAll checks every component concurrently, each bounded by
// HealthTimeout. Results keep registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	comps := append([]Component(nil), r.order...)
	r.mu.RUnlock()

	out := make([]Health, len(comps))
	var g errgroup.Group
	for i, c := range comps {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, HealthTimeout)
			defer cancel()
			out[i] = c.Health(pctx)
			if out[i].Name == "" {
				out[i].Name = c.Name()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Overall is the worst status in results; an empty list is healthy.
func Overall(results []Health) HealthStatus {
	worst := StatusHealthy
	for _, h := range results {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			worst = StatusDegraded
		}
	}
	return worst
}

// Describe collects summary rows from Describable components.
func (r *Registry) Describe() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Description
	for _, c := range r.order {
		if d, ok := c.(Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			out = append(out, desc)
		}
	}
	return out
}

// Routes collects the routes of RouteProvider components.
func (r *Registry) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Route
	for _, c := range r.order {
		if rp, ok := c.(RouteProvider); ok {
			out = append(out, rp.Routes()...)
		}
	}
	return out
}
