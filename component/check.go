package component

import "context"

// Check is a component with nothing to start or stop whose health comes
// from a ping function, e.g. an external LLM backend.
type Check struct {
	name string
	desc Description
	ping func(ctx context.Context) error
	// degrade reports ping failures as degraded instead of unhealthy.
	degrade bool
}

var (
	_ Component   = (*Check)(nil)
	_ Describable = (*Check)(nil)
)

// NewCheck creates a health-only component. When degrade is true a failing
// ping reports StatusDegraded, for dependencies the service can run
// without.
func NewCheck(name string, desc Description, degrade bool, ping func(ctx context.Context) error) *Check {
	return &Check{name: name, desc: desc, ping: ping, degrade: degrade}
}

func (c *Check) Name() string { return c.name }

func (c *Check) Describe() Description { return c.desc }

func (c *Check) Start(context.Context) error { return nil }

func (c *Check) Stop(context.Context) error { return nil }

func (c *Check) Health(ctx context.Context) Health {
	if err := c.ping(ctx); err != nil {
		status := StatusUnhealthy
		if c.degrade {
			status = StatusDegraded
		}
		return Health{Name: c.name, Status: status, Message: err.Error()}
	}
	return Health{Name: c.name, Status: StatusHealthy}
}
