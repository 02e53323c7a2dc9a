// Package synth provides a deterministic tone generator that satisfies
// recording.Device. It stands in for a microphone in the CLI and in tests.
package synth

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/kbukum/meetingmind/recording"
)

// Config describes the generated signal.
type Config struct {
	// ToneHz is the sine frequency. Default 440.
	ToneHz float64
	// SampleRate in samples per second. Default 16000.
	SampleRate int
	// ChunkInterval is how much audio each chunk holds. Default 250ms.
	ChunkInterval time.Duration
	// SupportedTypes lists the mime types the device can encode. Default
	// audio/webm and audio/mp4.
	SupportedTypes []string
	// Deny makes Open fail with recording.ErrPermissionDenied.
	Deny bool
	// Missing makes Open fail with recording.ErrDeviceNotFound.
	Missing bool
}

// Device generates 8-bit PCM tone chunks in real time.
type Device struct {
	cfg Config
	now func() time.Time
}

// New creates a Device.
func New(cfg Config) *Device {
	if cfg.ToneHz <= 0 {
		cfg.ToneHz = 440
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 250 * time.Millisecond
	}
	if len(cfg.SupportedTypes) == 0 {
		cfg.SupportedTypes = []string{recording.MimeWebM, recording.MimeMP4}
	}
	return &Device{cfg: cfg, now: time.Now}
}

// Open starts a stream.
func (d *Device) Open(ctx context.Context) (recording.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case d.cfg.Deny:
		return nil, recording.ErrPermissionDenied
	case d.cfg.Missing:
		return nil, recording.ErrDeviceNotFound
	}

	mime := recording.PreferredMimeType(func(t string) bool {
		for _, s := range d.cfg.SupportedTypes {
			if s == t {
				return true
			}
		}
		return false
	})

	s := &stream{
		cfg:     d.cfg,
		mime:    mime,
		closed:  make(chan struct{}),
		resumed: make(chan struct{}),
		ticker:  time.NewTicker(d.cfg.ChunkInterval),
	}
	close(s.resumed)
	return s, nil
}

type stream struct {
	cfg    Config
	mime   string
	ticker *time.Ticker

	mu      sync.Mutex
	sample  int
	bins    []byte
	paused  bool
	resumed chan struct{}
	closed  chan struct{}
	once    sync.Once
}

func (s *stream) MimeType() string { return s.mime }

// Read blocks for one chunk interval and returns the next block of
// samples. While paused it blocks until resumed or closed.
func (s *stream) Read() ([]byte, error) {
	for {
		s.mu.Lock()
		resumed := s.resumed
		s.mu.Unlock()

		select {
		case <-s.closed:
			return nil, io.EOF
		case <-resumed:
		}

		select {
		case <-s.closed:
			return nil, io.EOF
		case <-s.ticker.C:
		}

		s.mu.Lock()
		if s.paused {
			s.mu.Unlock()
			continue
		}
		chunk := s.next()
		s.mu.Unlock()
		return chunk, nil
	}
}

// next renders the following chunk. Must be called with s.mu held.
func (s *stream) next() []byte {
	n := int(float64(s.cfg.SampleRate) * s.cfg.ChunkInterval.Seconds())
	out := make([]byte, n)
	for i := range out {
		v := math.Sin(2 * math.Pi * s.cfg.ToneHz * float64(s.sample+i) / float64(s.cfg.SampleRate))
		out[i] = byte(128 + 127*v*s.envelope(s.sample+i))
	}
	s.sample += n
	s.bins = magnitudes(out, meterBins)
	return out
}

const meterBins = 64

// magnitudes splits a chunk of 8-bit PCM into n groups and reports each
// group's peak deviation from silence.
func magnitudes(pcm []byte, n int) []byte {
	if len(pcm) == 0 {
		return nil
	}
	n = min(n, len(pcm))
	bins := make([]byte, n)
	for i, b := range pcm {
		d := int(b) - 128
		if d < 0 {
			d = -d
		}
		g := i * n / len(pcm)
		bins[g] = max(bins[g], byte(min(d, 127)))
	}
	return bins
}

// envelope swells the tone once per second so the level meter moves.
func (s *stream) envelope(sample int) float64 {
	phase := float64(sample%s.cfg.SampleRate) / float64(s.cfg.SampleRate)
	return 0.5 + 0.5*math.Sin(2*math.Pi*phase)
}

// Level reports the loudness of the last chunk, in the meter's 0..1 range.
func (s *stream) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return 0
	}
	return recording.LevelFromBins(s.bins)
}

func (s *stream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.paused = true
		s.resumed = make(chan struct{})
	}
	return nil
}

func (s *stream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.paused = false
		close(s.resumed)
	}
	return nil
}

func (s *stream) Close() error {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.closed)
	})
	return nil
}
