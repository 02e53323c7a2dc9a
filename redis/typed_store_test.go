package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/meetingmind/analysis"
	"github.com/kbukum/meetingmind/component"
	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/security"
	"github.com/kbukum/meetingmind/security/tlstest"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)

	client, err := New(Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mini
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(Config{}, logger.Nop()); !errors.Is(err, ErrDisabled) {
		t.Errorf("New() error = %v, want ErrDisabled", err)
	}
}

func TestClient_GetMissing(t *testing.T) {
	client, _ := newTestClient(t)
	_, found, err := client.Get(context.Background(), "nope")
	if err != nil || found {
		t.Errorf("Get() found = %v, err = %v", found, err)
	}
	if !client.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false")
	}
	_ = client.Close()
	if client.IsAvailable(context.Background()) {
		t.Error("IsAvailable() after Close = true")
	}
}

func TestTypedStore_SaveAndLoadResult(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[analysis.Result](client, "meetingmind")
	ctx := context.Background()

	want := analysis.FallbackResult()
	if err := store.Save(ctx, "analysis:abc", &want, 0); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if !mini.Exists("meetingmind:analysis:abc") {
		t.Error("prefixed key not written")
	}

	got, err := store.Load(ctx, "analysis:abc")
	if err != nil || got == nil {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if got.Summary.Executive != want.Summary.Executive || got.Sentiment.PrimaryEmotion != want.Sentiment.PrimaryEmotion {
		t.Errorf("Load() = %+v", got)
	}
	if err := analysis.Check(*got); err != nil {
		t.Errorf("round-tripped result fails schema: %v", err)
	}
}

func TestTypedStore_LoadMissing(t *testing.T) {
	client, _ := newTestClient(t)
	got, err := NewTypedStore[analysis.Result](client, "").Load(context.Background(), "missing")
	if err != nil || got != nil {
		t.Errorf("Load() = %v, %v, want nil, nil", got, err)
	}
}

func TestTypedStore_TTLAndDelete(t *testing.T) {
	client, mini := newTestClient(t)
	store := NewTypedStore[map[string]int](client, "")
	ctx := context.Background()

	v := map[string]int{"n": 1}
	if err := store.Save(ctx, "ttl", &v, 2*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "del", &v, 0); err != nil {
		t.Fatal(err)
	}

	mini.FastForward(3 * time.Second)
	if got, _ := store.Load(ctx, "ttl"); got != nil {
		t.Errorf("value survived its TTL: %v", got)
	}

	if err := store.Delete(ctx, "del"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Load(ctx, "del"); got != nil {
		t.Errorf("value survived Delete: %v", got)
	}
}

func TestTypedStore_CorruptValue(t *testing.T) {
	client, mini := newTestClient(t)
	_ = mini.Set("bad", "{not json")
	if _, err := NewTypedStore[analysis.Result](client, "").Load(context.Background(), "bad"); err == nil {
		t.Error("Load() of corrupt value = nil error")
	}
	if mini.Exists("bad") {
		t.Error("corrupt value was not removed")
	}
}

func TestTypedStore_BacksAnalysisCache(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewTypedStore[analysis.Result](client, "meetingmind")

	var calls int
	p := analysis.ProviderFunc(func(context.Context, analysis.GenerateRequest) (string, error) {
		calls++
		return `{"summary":{"executive":"e","detailed":"d","bulletPoints":["b"]},"actionItems":[],"decisions":[],"topics":[],"sentiment":{"score":0,"magnitude":0,"primaryEmotion":"neutral"}}`, nil
	})
	cached := analysis.NewCachedEngine(analysis.NewEngine(p), store, time.Hour, nil)

	for i := 0; i < 2; i++ {
		if _, err := cached.Analyze(context.Background(), "Speaker 1: hello"); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("provider calls = %d, want 1", calls)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	c := NewComponent(Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())

	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %+v", h)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}
	if c.Describe().Details == "" {
		t.Error("empty description")
	}

	mini.Close()
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health after server loss = %+v", h)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}

func TestComponent_StartFails(t *testing.T) {
	c := NewComponent(Config{Enabled: true, Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: 1}, logger.Nop())
	if err := c.Start(context.Background()); err == nil {
		t.Error("Start() against a closed port = nil")
	}
}

func TestNew_TLS(t *testing.T) {
	certs := tlstest.Generate(t)
	mini := miniredis.NewMiniRedis()
	if err := mini.StartTLS(&tls.Config{Certificates: []tls.Certificate{certs.Server}}); err != nil {
		t.Fatalf("StartTLS: %v", err)
	}
	t.Cleanup(mini.Close)

	client, err := New(Config{
		Enabled: true,
		Addr:    mini.Addr(),
		TLS:     &security.TLSConfig{CAFile: certs.CAFile, ServerName: "localhost"},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping over TLS: %v", err)
	}

	_, err = New(Config{Enabled: true, Addr: mini.Addr(), TLS: &security.TLSConfig{KeyFile: certs.KeyFile}}, logger.Nop())
	if err == nil {
		t.Error("key_file without cert_file accepted")
	}
}
