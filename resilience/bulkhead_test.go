package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	rejected := 0
	b := NewBulkhead(BulkheadConfig{Name: "analysis", MaxConcurrent: 1, OnReject: func(string) { rejected++ }})

	hold := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- b.Execute(context.Background(), func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	if b.InUse() != 1 || b.Available() != 0 {
		t.Errorf("expected one slot in use, got in-use %d available %d", b.InUse(), b.Available())
	}
	if err := b.Execute(context.Background(), func() error { return nil }); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("expected ErrBulkheadFull, got %v", err)
	}
	if rejected != 1 {
		t.Errorf("OnReject calls = %d, want 1", rejected)
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("holder failed: %v", err)
	}
	if b.InUse() != 0 {
		t.Errorf("slot should be released, in-use %d", b.InUse())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started
	defer close(hold)

	if err := b.Execute(context.Background(), func() error { return nil }); !errors.Is(err, ErrBulkheadTimeout) {
		t.Errorf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestExecuteWithResult(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	got, err := ExecuteWithResult(context.Background(), b, func() (string, error) { return "summary", nil })
	if err != nil || got != "summary" {
		t.Errorf("got (%q, %v)", got, err)
	}
}
