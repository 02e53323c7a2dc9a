package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/meetingmind/component"
	"github.com/kbukum/meetingmind/logger"
)

const componentName = "redis"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component connects on Start, so the analysis cache can be wired before
// the server is reachable. Client is nil until then.
type Component struct {
	cfg    Config
	log    *logger.Logger
	client *Client
}

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent(componentName)}
}

func (c *Component) Client() *Client { return c.client }
func (c *Component) Name() string    { return componentName }

func (c *Component) Describe() component.Description {
	tls := ""
	if c.cfg.TLS != nil {
		tls = " tls"
	}
	return component.Description{
		Name:    "Redis",
		Type:    "cache",
		Details: fmt.Sprintf("%s/%d prefix=%s pool=%d%s", c.cfg.Addr, c.cfg.DB, c.cfg.KeyPrefix, c.cfg.PoolSize, tls),
	}
}

// Start fails unless the server answers a ping.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis %s: %w", c.cfg.Addr, err)
	}
	c.client = client
	c.log.Info("Connected to Redis", logger.Fields("addr", c.cfg.Addr))
	return nil
}

func (c *Component) Stop(context.Context) error {
	return c.client.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	switch {
	case c.client == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not connected"
	case !c.client.IsAvailable(ctx):
		h.Status, h.Message = component.StatusUnhealthy, "ping failed"
	}
	return h
}
