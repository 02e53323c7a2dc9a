package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/observability"
	"github.com/kbukum/meetingmind/resilience"
)

// SummaryPlaceholder is returned by QuickSummarize when summarizing fails.
const SummaryPlaceholder = "Summary generation failed. Please try again."

// ErrEmptyTranscript is returned for a blank transcript.
var ErrEmptyTranscript = errors.New("analysis: transcript is empty")

// Provider generates text for a prompt.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req GenerateRequest) (string, error)

// Generate calls f.
func (f ProviderFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

// Observer receives attempt and run measurements. metrics.Registry
// satisfies it.
type Observer interface {
	ObserveAttempt(result string)
	ObserveAnalysis(outcome string, d time.Duration)
}

// Analyzer is what hosts depend on; Engine and CachedEngine implement it.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (Result, error)
	Run(ctx context.Context, transcript string) Outcome
	QuickSummarize(ctx context.Context, transcript string) string
}

// Outcome is the detailed result of Run. Fallback is true when Result is
// FallbackResult; Err then holds the last failure. Under PolicyStrict a
// failed run has a zero Result and a non-nil Err.
type Outcome struct {
	Result   Result
	Attempts int
	Fallback bool
	Cached   bool
	Err      *Error
}

// Engine runs the analysis pipeline against a Provider.
type Engine struct {
	provider    Provider
	retry       resilience.RetryConfig
	policy      Policy
	temperature float64
	onAttempt   func(attempt int, err error, wait time.Duration)
	observer    Observer
	log         *logger.Logger
	now         func() time.Time
}

var _ Analyzer = (*Engine)(nil)

// NewEngine creates an Engine. Without options it makes up to 3 attempts,
// backs off 1s then 2s (capped at 10s), bounds each attempt to 30s and
// falls back on exhaustion.
func NewEngine(p Provider, opts ...Option) *Engine {
	e := &Engine{
		provider: p,
		retry: resilience.RetryConfig{
			MaxAttempts:    DefaultMaxAttempts,
			InitialBackoff: DefaultInitialBackoff,
			MaxBackoff:     DefaultMaxBackoff,
			BackoffFactor:  2,
			AttemptTimeout: DefaultAttemptTimeout,
		},
		policy:      PolicyFallback,
		temperature: DefaultTemperature,
		observer:    nopObserver{},
		log:         logger.Nop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.retry.RetryIf = resilience.DefaultRetryIf
	return e
}

// Policy returns the exhaustion policy.
func (e *Engine) Policy() Policy { return e.policy }

// Analyze returns a validated Result. Under PolicyFallback it only fails
// for a blank transcript; under PolicyStrict exhaustion returns an *Error.
func (e *Engine) Analyze(ctx context.Context, transcript string) (Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return Result{}, ErrEmptyTranscript
	}
	out := e.Run(ctx, transcript)
	if out.Err != nil && !out.Fallback {
		return Result{}, out.Err
	}
	return out.Result, nil
}

// Run executes the retrying pipeline and reports how it ended.
func (e *Engine) Run(ctx context.Context, transcript string) Outcome {
	start := e.now()
	ctx, span := observability.StartSpan(ctx, observability.SpanAnalysis)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTranscriptLen, len(transcript))

	log := e.log.WithContext(ctx)
	log.Debug("analysis started", logger.Fields("transcript_len", len(transcript)))

	var (
		attempts     int
		notified     int
		schemaFields []string
	)

	cfg := e.retry
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		notified = attempt
		log.Warn("analysis attempt failed, retrying", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldError, err.Error(),
			"wait_ms", wait.Milliseconds(),
		))
		e.notify(attempt, err, wait)
	}

	res, err := resilience.Retry(ctx, cfg, func(ctx context.Context, attempt int) (Result, error) {
		attempts = attempt
		r, err := e.attempt(ctx, attempt, BuildCorrectionPrompt(transcript, schemaFields))

		schemaFields = nil
		var aerr *Error
		if errors.As(err, &aerr) && aerr.Kind == KindSchema {
			schemaFields = aerr.Fields
		}
		if err == nil {
			notified = attempt
			e.notify(attempt, nil, 0)
		}
		return r, err
	})

	elapsed := e.now().Sub(start)
	observability.SetSpanAttribute(ctx, observability.AttrAttempts, attempts)

	if err == nil {
		e.observer.ObserveAnalysis("success", elapsed)
		log.Info("analysis completed", logger.Fields(
			"attempts", attempts,
			logger.FieldDuration, elapsed.Milliseconds(),
		))
		return Outcome{Result: res, Attempts: attempts}
	}

	aerr := asError(err, attempts)
	if attempts > 0 && notified != attempts {
		e.notify(attempts, aerr, 0)
	}
	observability.SetSpanError(ctx, aerr)
	observability.SetSpanAttribute(ctx, observability.AttrErrorKind, string(aerr.Kind))

	fields := logger.Fields(
		"attempts", attempts,
		"kind", string(aerr.Kind),
		"policy", string(e.policy),
		logger.FieldError, aerr.Error(),
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if e.policy == PolicyStrict {
		e.observer.ObserveAnalysis("error", elapsed)
		log.Error("analysis failed", fields)
		return Outcome{Attempts: attempts, Err: aerr}
	}

	e.observer.ObserveAnalysis("fallback", elapsed)
	observability.SetSpanAttribute(ctx, observability.AttrFallback, true)
	log.Error("analysis failed, returning fallback result", fields)
	return Outcome{Result: FallbackResult(), Attempts: attempts, Fallback: true, Err: aerr}
}

func (e *Engine) attempt(ctx context.Context, n int, prompt string) (Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanAnalysisAttempt)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrAttempt, n)

	res, err := e.try(ctx, prompt)
	if err != nil {
		observability.SetSpanError(ctx, err)
		e.observer.ObserveAttempt(string(asError(err, 0).Kind))
		return Result{}, err
	}
	e.observer.ObserveAttempt("")
	return res, nil
}

func (e *Engine) try(ctx context.Context, prompt string) (Result, error) {
	text, err := e.provider.Generate(ctx, GenerateRequest{
		Prompt:      prompt,
		JSON:        true,
		Temperature: e.temperature,
	})
	if err != nil {
		return Result{}, &Error{Kind: KindProvider, Err: err}
	}

	obj, err := Decode(text)
	if err != nil {
		return Result{}, &Error{Kind: KindDecode, Err: err}
	}
	return Validate(obj)
}

// Summarize makes a single free-text summary call. The reply is trimmed;
// an empty reply is an error.
func (e *Engine) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanQuickSummary)
	defer span.End()

	if e.retry.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.retry.AttemptTimeout)
		defer cancel()
	}

	text, err := e.provider.Generate(ctx, GenerateRequest{
		Prompt:      QuickSummaryPrompt(transcript),
		Temperature: e.temperature,
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return "", &Error{Kind: KindProvider, Attempts: 1, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Kind: KindDecode, Attempts: 1, Err: errors.New("empty summary")}
	}
	return text, nil
}

// QuickSummarize is Summarize with failures replaced by SummaryPlaceholder.
func (e *Engine) QuickSummarize(ctx context.Context, transcript string) string {
	text, err := e.Summarize(ctx, transcript)
	if err != nil {
		e.log.WithContext(ctx).Warn("quick summary failed", logger.ErrorFields("summarize", err))
		return SummaryPlaceholder
	}
	return text
}

func (e *Engine) notify(attempt int, err error, wait time.Duration) {
	if e.onAttempt != nil {
		e.onAttempt(attempt, err, wait)
	}
}

// asError converts whatever Retry returned into an *Error carrying the
// attempt count.
func asError(err error, attempts int) *Error {
	var aerr *Error
	if errors.As(err, &aerr) {
		out := *aerr
		if attempts > 0 {
			out.Attempts = attempts
		}
		return &out
	}
	return &Error{Kind: KindProvider, Attempts: attempts, Err: err}
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string)                 {}
func (nopObserver) ObserveAnalysis(string, time.Duration) {}
