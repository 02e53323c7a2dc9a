package server

import (
	"errors"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/meetingmind/analysis"
	apperrors "github.com/kbukum/meetingmind/errors"
	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/resilience"
)

// AIConfig configures the /api/ai routes.
type AIConfig struct {
	// MinTranscriptLength is the shortest transcript, in characters, that
	// /analyze accepts.
	MinTranscriptLength int
	// MaxConcurrent bounds analyses in flight; extra requests get a 503.
	MaxConcurrent int
	// MaxWait is how long a request may queue for a slot. Zero rejects at once.
	MaxWait time.Duration
	// InFlight, when set, is told about every analysis that starts and ends.
	InFlight InFlightTracker
}

// InFlightTracker counts running analyses. metrics.Registry implements it.
type InFlightTracker interface {
	TrackInFlight(delta int)
}

// AnalyzeRequest is the body of POST /api/ai/analyze.
type AnalyzeRequest struct {
	Transcript string `json:"transcript"`
	// MeetingID is accepted for compatibility; results are not persisted.
	MeetingID string `json:"meetingId,omitempty"`
}

// AnalyzeMeta reports how a result was produced.
type AnalyzeMeta struct {
	Attempts int    `json:"attempts"`
	Fallback bool   `json:"fallback"`
	Cached   bool   `json:"cached"`
	Error    string `json:"error,omitempty"`
}

// AnalyzeResponse is the analysis result with its fields at top level plus
// a meta object.
type AnalyzeResponse struct {
	analysis.Result
	Meta AnalyzeMeta `json:"meta"`
}

// SummarizeRequest is the body of POST /api/ai/summarize.
type SummarizeRequest struct {
	Transcript string `json:"transcript"`
}

// SummarizeResponse is the body returned by POST /api/ai/summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// AIHandler serves transcript analysis and quick summaries.
type AIHandler struct {
	analyzer  analysis.Analyzer
	bulkhead  *resilience.Bulkhead
	inFlight  InFlightTracker
	minLength int
	log       *logger.Logger
}

// NewAIHandler creates the handler for the /api/ai routes.
func NewAIHandler(a analysis.Analyzer, cfg AIConfig, log *logger.Logger) *AIHandler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if cfg.MinTranscriptLength <= 0 {
		cfg.MinTranscriptLength = DefaultMinTranscriptLength
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = analysis.DefaultMaxConcurrent
	}
	l := log.WithComponent("server.ai")
	return &AIHandler{
		analyzer: a,
		bulkhead: resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "analysis",
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxWait,
			OnReject: func(name string) {
				l.Warn("Analysis rejected, bulkhead full", logger.Fields("bulkhead", name))
			},
		}),
		inFlight:  cfg.InFlight,
		minLength: cfg.MinTranscriptLength,
		log:       l,
	}
}

// Register mounts POST /analyze and POST /summarize on r.
func (h *AIHandler) Register(r gin.IRouter) {
	r.POST("/analyze", h.Analyze)
	r.POST("/summarize", h.Summarize)
}

// Analyze handles POST /analyze.
func (h *AIHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		RespondWithError(c, bindError(err))
		return
	}
	if utf8.RuneCountInString(req.Transcript) < h.minLength {
		RespondWithError(c, apperrors.Validation("Transcript too short for analysis").
			WithDetail("minLength", h.minLength))
		return
	}

	ctx := c.Request.Context()
	outcome, err := resilience.ExecuteWithResult(ctx, h.bulkhead, func() (analysis.Outcome, error) {
		if h.inFlight != nil {
			h.inFlight.TrackInFlight(1)
			defer h.inFlight.TrackInFlight(-1)
		}
		return h.analyzer.Run(ctx, req.Transcript), nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrBulkheadFull) || errors.Is(err, resilience.ErrBulkheadTimeout) {
			c.Header("Retry-After", "5")
			RespondWithError(c, apperrors.ServiceUnavailable("analysis engine"))
			return
		}
		RespondWithError(c, apperrors.Timeout("analyze").WithCause(err))
		return
	}

	log := h.log.WithContext(ctx)
	if outcome.Err != nil && !outcome.Fallback {
		log.Error("Analysis failed", logger.Fields(
			logger.FieldError, outcome.Err.Error(),
			logger.FieldAttempt, outcome.Attempts,
		))
		RespondWithError(c, outcome.Err.AppError())
		return
	}

	meta := AnalyzeMeta{Attempts: outcome.Attempts, Fallback: outcome.Fallback, Cached: outcome.Cached}
	if outcome.Err != nil {
		meta.Error = string(outcome.Err.Kind)
		log.Warn("Analysis fell back to placeholder result", logger.Fields(
			logger.FieldError, outcome.Err.Error(),
			logger.FieldAttempt, outcome.Attempts,
		))
	}
	c.JSON(http.StatusOK, AnalyzeResponse{Result: outcome.Result, Meta: meta})
}

// Summarize handles POST /summarize. A failed provider call still answers
// 200 with the placeholder summary.
func (h *AIHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		RespondWithError(c, bindError(err))
		return
	}
	if req.Transcript == "" {
		RespondWithError(c, apperrors.Validation("Transcript required").WithDetail("field", "transcript"))
		return
	}

	summary := h.analyzer.QuickSummarize(c.Request.Context(), req.Transcript)
	c.JSON(http.StatusOK, SummarizeResponse{Summary: summary})
}

// InFlight returns the number of analyses currently running.
func (h *AIHandler) InFlight() int {
	return h.bulkhead.InUse()
}

func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return apperrors.InvalidInput("body", "request body must be a JSON object").WithCause(err)
}

// isEmptyBody reports an absent body, which is treated as an empty transcript.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
