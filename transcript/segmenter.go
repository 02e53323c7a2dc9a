package transcript

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/pipeline"
)

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLabeler sets the speaker labeler.
func WithLabeler(l SpeakerLabeler) Option {
	return func(s *Segmenter) {
		if l != nil {
			s.labeler = l
		}
	}
}

// WithClock sets the clock used for segment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Segmenter) { s.now = now }
}

// WithIDGenerator sets the segment ID generator. Defaults to random UUIDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Segmenter) { s.newID = gen }
}

// WithLogger sets the segmenter logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Segmenter) {
		if l != nil {
			s.log = l.WithComponent("transcript")
		}
	}
}

// Segmenter accumulates segments from recognition events. It is safe for
// concurrent use.
type Segmenter struct {
	labeler SpeakerLabeler
	now     func() time.Time
	newID   func() string
	log     *logger.Logger

	mu       sync.RWMutex
	segments []Segment
	interim  string
}

// NewSegmenter creates an empty Segmenter.
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{
		labeler: CadenceLabeler{Every: DefaultCadence},
		now:     time.Now,
		newID:   uuid.NewString,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle applies one event. Final results append a segment; the non-final
// results together replace the interim text, which ends up empty when
// there are none. An event with no results past ResultIndex changes
// nothing. Final results whose text is blank are dropped.
func (s *Segmenter) Handle(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := ev.ResultIndex
	if start < 0 {
		start = 0
	}

	if start >= len(ev.Results) {
		return
	}

	var interim strings.Builder
	for i := start; i < len(ev.Results); i++ {
		r := ev.Results[i]
		if len(r.Alternatives) == 0 {
			continue
		}
		text := r.Alternatives[0].Text

		if !r.IsFinal {
			interim.WriteString(text)
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		seg := Segment{
			ID:          s.newID(),
			Speaker:     s.labeler.Label(len(s.segments)),
			Text:        text,
			TimestampMs: s.now().UnixMilli(),
			IsFinal:     true,
		}
		s.segments = append(s.segments, seg)
		s.log.Debug("segment committed", logger.Fields("speaker", seg.Speaker, "segments", len(s.segments)))
	}
	s.interim = interim.String()
}

// Segments returns a copy of the committed segments.
func (s *Segmenter) Segments() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// CommittedSegments returns a lazy, ordered view of the segments committed
// so far. The view is a snapshot: later finals do not appear in it, and
// Reset does not clear it.
func (s *Segmenter) CommittedSegments() *pipeline.Pipeline[Segment] {
	return pipeline.FromSlice(s.Segments())
}

// Len returns the number of committed segments.
func (s *Segmenter) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.segments)
}

// InterimText returns the current non-final text.
func (s *Segmenter) InterimText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interim
}

// Reset clears segments, interim text and the speaker cadence.
func (s *Segmenter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = nil
	s.interim = ""
}

// Consume handles every event of events until the stream ends, fails or
// ctx is cancelled. handled, when non-nil, runs after each event.
func (s *Segmenter) Consume(ctx context.Context, events *pipeline.Pipeline[Event], handled func()) error {
	return pipeline.ForEach(ctx, events, func(_ context.Context, ev Event) error {
		s.Handle(ev)
		if handled != nil {
			handled()
		}
		return nil
	})
}

// Text renders the committed segments as "Speaker N: text" lines.
func (s *Segmenter) Text() string {
	var lines []string
	_ = pipeline.ForEach(context.Background(), s.CommittedSegments(), func(_ context.Context, seg Segment) error {
		lines = append(lines, seg.String())
		return nil
	})
	return strings.Join(lines, "\n")
}
