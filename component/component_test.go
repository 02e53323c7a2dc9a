package component

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kbukum/meetingmind/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) Health { return m.health }

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(logger.Nop())
	if err := r.Register(&mockComponent{name: "redis"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&mockComponent{name: "redis"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("redis") == nil || r.Get("missing") != nil {
		t.Error("Get() lookup mismatch")
	}
}

func TestStartAndStopOrder(t *testing.T) {
	r := NewRegistry(nil)
	var started, stopped []string
	for _, name := range []string{"redis", "llm", "http"} {
		_ = r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() = %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll() = %v", err)
	}
	if !slices.Equal(started, []string{"redis", "llm", "http"}) {
		t.Errorf("start order = %v", started)
	}
	if !slices.Equal(stopped, []string{"http", "llm", "redis"}) {
		t.Errorf("stop order = %v", stopped)
	}
}

func TestStartAllError_StopsOnlyStarted(t *testing.T) {
	r := NewRegistry(logger.Nop())
	var stopped []string
	_ = r.Register(&mockComponent{name: "redis", stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "http", startErr: fmt.Errorf("address in use"), stopOrder: &stopped})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	_ = r.StopAll(context.Background())
	if !slices.Equal(stopped, []string{"redis"}) {
		t.Errorf("stopped = %v, want only the started component", stopped)
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry(logger.Nop())
	_ = r.Register(&mockComponent{name: "redis", stopErr: errors.New("stop failed")})
	_ = r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAllAndOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(logger.Nop())
			for i, s := range tt.statuses {
				name := fmt.Sprintf("c%d", i)
				_ = r.Register(&mockComponent{name: name, health: Health{Name: name, Status: s}})
			}
			results := r.HealthAll(context.Background())
			if len(results) != len(tt.statuses) {
				t.Fatalf("results = %v", results)
			}
			if got := Overall(results); got != tt.want {
				t.Errorf("Overall() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	r := NewRegistry(logger.Nop())
	_ = r.Register(&mockComponent{name: "plain"})
	_ = r.Register(&describedComponent{mockComponent: mockComponent{name: "redis"}, desc: Description{Type: "cache", Details: "localhost:6379"}})

	descs := r.Describe()
	if len(descs) != 1 || descs[0].Name != "redis" || descs[0].Type != "cache" {
		t.Errorf("Describe() = %+v", descs)
	}
}

func TestCheck(t *testing.T) {
	var checkErr error
	ping := func(context.Context) error { return checkErr }

	c := NewCheck("llm", Description{Type: "llm"}, true, ping)
	if h := c.Health(context.Background()); h.Status != StatusHealthy {
		t.Errorf("health = %+v", h)
	}

	checkErr = errors.New("unreachable")
	if h := c.Health(context.Background()); h.Status != StatusDegraded || h.Message != "unreachable" {
		t.Errorf("health = %+v", h)
	}

	strict := NewCheck("llm", Description{}, false, ping)
	if h := strict.Health(context.Background()); h.Status != StatusUnhealthy {
		t.Errorf("health = %+v", h)
	}
	if err := strict.Start(context.Background()); err != nil {
		t.Error(err)
	}
	if err := strict.Stop(context.Background()); err != nil {
		t.Error(err)
	}
}
