// Package app wires configuration, the LLM adapter, the analysis engine,
// its result cache and the HTTP host into one service graph shared by
// every meetingmind command.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/meetingmind/analysis"
	"github.com/kbukum/meetingmind/component"
	"github.com/kbukum/meetingmind/credentials"
	"github.com/kbukum/meetingmind/llm"
	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/metrics"
	"github.com/kbukum/meetingmind/observability"
	"github.com/kbukum/meetingmind/provider"
	"github.com/kbukum/meetingmind/redis"
	"github.com/kbukum/meetingmind/resilience"
	"github.com/kbukum/meetingmind/server"
	"github.com/kbukum/meetingmind/server/endpoint"

	_ "github.com/kbukum/meetingmind/llm/gemini"
	_ "github.com/kbukum/meetingmind/llm/ollama"
)

// Stack is the analysis service graph built from a Config.
type Stack struct {
	Config  *Config
	Metrics *metrics.Registry
	Adapter *llm.Adapter
	Engine  *analysis.Engine
	// Analyzer is Engine, or a CachedEngine in front of it.
	Analyzer analysis.Analyzer
	// Redis is nil unless redis.enabled is set.
	Redis *redis.Component
	// KeySource says where the API key came from; empty when none is used.
	KeySource credentials.Source

	llmCheck *component.Check
	log      *logger.Logger
}

// Build creates the stack. keys is consulted when the config carries no
// API key; it may be nil. cfg must already have defaults applied.
func Build(cfg *Config, keys credentials.Store, log *logger.Logger) (*Stack, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	s := &Stack{Config: cfg, Metrics: metrics.New(), log: log}

	llmCfg := cfg.LLM
	key, source, err := credentials.ResolveAPIKey(llmCfg.APIKey, keys)
	switch {
	case err == nil:
		llmCfg.APIKey = key
		s.KeySource = source
	case llmCfg.Dialect == "gemini":
		return nil, fmt.Errorf("gemini API key: %w (set GEMINI_API_KEY or run `meetingmind auth set-key`)", err)
	default:
		log.Debug("No API key for LLM dialect", logger.Fields("dialect", llmCfg.Dialect, logger.FieldError, err.Error()))
	}

	adapter, err := llm.New(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("llm adapter: %w", err)
	}
	s.Adapter = adapter

	completion, err := s.completion(llmCfg)
	if err != nil {
		return nil, err
	}
	s.Engine = analysis.NewEngine(
		analysis.NewLLMProvider(completion),
		append(cfg.Analysis.Options(),
			analysis.WithTemperature(llmCfg.Temperature),
			analysis.WithObserver(s.Metrics),
			analysis.WithLogger(log),
		)...,
	)
	s.Analyzer = s.Engine

	if cfg.Redis.Enabled {
		s.Redis = redis.NewComponent(cfg.Redis, log)
	}
	if cfg.Analysis.Cache.Enabled {
		store, err := s.resultStore()
		if err != nil {
			return nil, err
		}
		s.Analyzer = analysis.NewCachedEngine(s.Engine, store, cfg.Analysis.Cache.TTL, s.Metrics)
	}

	s.llmCheck = component.NewCheck("llm", component.Description{
		Name:    "LLM",
		Type:    "llm",
		Details: fmt.Sprintf("%s model=%s", adapter.Dialect().Name(), adapter.Model()),
	}, true, func(ctx context.Context) error {
		if !adapter.IsAvailable(ctx) {
			return errors.New("provider unreachable")
		}
		return nil
	})
	return s, nil
}

// completion wraps the adapter in the provider middleware stack. Retries
// stay with the engine.
func (s *Stack) completion(cfg llm.Config) (provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse], error) {
	breaker := resilience.DefaultCircuitBreakerConfig(cfg.Name)
	breaker.IsFailure = func(err error) bool { return !errors.Is(err, context.Canceled) }
	breaker.OnStateChange = func(name string, from, to resilience.State) {
		s.log.Warn("LLM circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
	}

	mws := []provider.Middleware[llm.CompletionRequest, llm.CompletionResponse]{
		provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](s.log),
		provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse](s.Config.Name),
		provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](s.Metrics),
	}
	if s.Config.Observability.Enabled {
		otelMetrics, err := observability.NewMetrics(observability.Meter(s.Config.Name))
		if err != nil {
			return nil, fmt.Errorf("otel instruments: %w", err)
		}
		mws = append(mws, provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](otelMetrics))
	}
	mws = append(mws, provider.WithResilience[llm.CompletionRequest, llm.CompletionResponse](provider.ResilienceConfig{
		CircuitBreaker: &breaker,
	}))
	return provider.Chain(mws...)(s.Adapter), nil
}

func (s *Stack) resultStore() (provider.ContextStore[analysis.Result], error) {
	switch s.Config.Analysis.Cache.Backend {
	case "redis":
		if s.Redis == nil {
			return nil, errors.New("analysis cache: redis backend requires redis.enabled")
		}
		return &redisResultStore{comp: s.Redis, prefix: s.Config.Redis.KeyPrefix}, nil
	default:
		return provider.NewMemoryStore[analysis.Result]().WithLimit(s.Config.Analysis.Cache.MaxEntries), nil
	}
}

// Components returns the stack's lifecycle components in start order.
func (s *Stack) Components() []component.Component {
	var out []component.Component
	if s.Redis != nil {
		out = append(out, s.Redis)
	}
	return append(out, s.llmCheck)
}

// Register adds Components to r.
func (s *Stack) Register(r interface {
	RegisterComponent(component.Component) error
}) error {
	for _, c := range s.Components() {
		if err := r.RegisterComponent(c); err != nil {
			return err
		}
	}
	return nil
}

// NewServer builds the HTTP host serving the stack's analyzer. checker
// feeds /health; it may be nil.
func (s *Stack) NewServer(checker endpoint.HealthChecker) *server.Server {
	cfg := s.Config
	srv := server.New(cfg.Server, s.log)
	srv.ApplyMiddleware(s.Metrics)
	srv.RegisterDefaultEndpoints(cfg.Name, cfg.Environment, checker, s.Metrics.Handler())
	srv.RegisterAPI(cfg.Name, server.NewAIHandler(s.Analyzer, server.AIConfig{
		MinTranscriptLength: cfg.Server.MinTranscriptLength,
		MaxConcurrent:       cfg.Analysis.MaxConcurrent,
		InFlight:            s.Metrics,
	}, s.log))
	return srv
}

var errRedisNotStarted = errors.New("redis component not started")

// redisResultStore resolves the Redis client on each call, since the
// component connects only when the application starts.
type redisResultStore struct {
	comp   *redis.Component
	prefix string
}

func (r *redisResultStore) store() (*redis.TypedStore[analysis.Result], error) {
	client := r.comp.Client()
	if client == nil {
		return nil, errRedisNotStarted
	}
	return redis.NewTypedStore[analysis.Result](client, r.prefix), nil
}

func (r *redisResultStore) Load(ctx context.Context, key string) (*analysis.Result, error) {
	st, err := r.store()
	if err != nil {
		return nil, err
	}
	return st.Load(ctx, key)
}

func (r *redisResultStore) Save(ctx context.Context, key string, val *analysis.Result, ttl time.Duration) error {
	st, err := r.store()
	if err != nil {
		return err
	}
	return st.Save(ctx, key, val, ttl)
}

func (r *redisResultStore) Delete(ctx context.Context, key string) error {
	st, err := r.store()
	if err != nil {
		return err
	}
	return st.Delete(ctx, key)
}
