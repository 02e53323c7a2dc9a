package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbukum/meetingmind/provider"
)

var _ provider.ContextStore[any] = (*TypedStore[any])(nil)

// TypedStore keeps values of type C as JSON strings under "<prefix>:<key>".
// A value that no longer decodes is removed so the next Load misses.
type TypedStore[C any] struct {
	client *Client
	prefix string
}

// NewTypedStore returns a store on client. An empty prefix leaves keys bare.
func NewTypedStore[C any](client *Client, prefix string) *TypedStore[C] {
	return &TypedStore[C]{client: client, prefix: prefix}
}

func (s *TypedStore[C]) key(k string) string {
	if s.prefix != "" {
		return s.prefix + ":" + k
	}
	return k
}

func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, ok, err := s.client.Get(ctx, s.key(key))
	switch {
	case err != nil:
		return nil, fmt.Errorf("redis load %s: %w", key, err)
	case !ok:
		return nil, nil
	}
	val := new(C)
	if err := json.Unmarshal([]byte(raw), val); err != nil {
		_ = s.client.Del(ctx, s.key(key))
		return nil, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return val, nil
}

// Save writes val; ttl 0 keeps it until deleted.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err == nil {
		err = s.client.Set(ctx, s.key(key), data, ttl)
	}
	if err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}

func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}
