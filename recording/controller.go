package recording

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/meetingmind/logger"
)

// Controller runs capture sessions against a Device. All methods are safe
// for concurrent use.
type Controller struct {
	dev           Device
	cb            Callbacks
	meterInterval time.Duration
	tickInterval  time.Duration
	newTicker     TickerFactory
	log           *logger.Logger

	starting atomic.Bool

	mu         sync.Mutex
	status     Status
	elapsed    int
	level      float64
	lastChunks int
	lastMime   string
	err        *DeviceError
	epoch      uint64
	run        *run
}

// run is one open stream with its capture goroutine and timing loops.
type run struct {
	stream   Stream
	mime     string
	chunks   [][]byte
	loops    *loopSet
	captured chan struct{}

	// levels holds the newest unsent level; retired ends the dispatcher.
	levels  chan float64
	retired chan struct{}
}

// publish replaces any level the dispatcher has not picked up yet. The
// meter is the only sender, so the send after the drain cannot block.
func (r *run) publish(level float64) {
	select {
	case <-r.levels:
	default:
	}
	select {
	case r.levels <- level:
	default:
	}
}

// loopSet is the meter and counter goroutines of one recording stretch.
// Pause retires the set; Resume starts a new one. Neither loop calls into
// host code, so stop never waits on a callback.
type loopSet struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (ls *loopSet) stop() {
	if ls == nil {
		return
	}
	ls.cancel()
	ls.wg.Wait()
}

// NewController creates an idle Controller.
func NewController(dev Device, cb Callbacks, opts ...Option) *Controller {
	c := &Controller{
		dev:           dev,
		cb:            cb,
		meterInterval: DefaultMeterInterval,
		tickInterval:  DefaultTickInterval,
		newTicker:     newTimeTicker,
		log:           logger.Nop(),
		status:        StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start opens the device and begins recording. It is valid from idle,
// stopped or error; from any other state, or while another Start is in
// flight, it does nothing and returns nil. A device failure moves the
// controller to error and is returned.
func (c *Controller) Start(ctx context.Context) *DeviceError {
	if !c.starting.CompareAndSwap(false, true) {
		return nil
	}
	defer c.starting.Store(false)

	c.mu.Lock()
	if c.status == StatusRecording || c.status == StatusPaused {
		c.mu.Unlock()
		return nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	stream, err := c.dev.Open(ctx)

	c.mu.Lock()
	if c.epoch != epoch {
		// Cancelled while the device was opening.
		c.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		return nil
	}
	if err != nil {
		derr := classify(err)
		c.status = StatusError
		c.err = derr
		c.level = 0
		c.mu.Unlock()

		c.log.Warn("failed to open capture device", logger.Fields("kind", string(derr.Kind), logger.FieldError, err.Error()))
		c.fireError(derr)
		return derr
	}

	r := &run{
		stream:   stream,
		mime:     stream.MimeType(),
		captured: make(chan struct{}),
		levels:   make(chan float64, 1),
		retired:  make(chan struct{}),
	}
	c.run = r
	c.status = StatusRecording
	c.elapsed = 0
	c.level = 0
	c.err = nil
	c.lastChunks = 0
	c.lastMime = r.mime
	r.loops = c.startLoops(r)
	c.mu.Unlock()

	go c.capture(r)
	if c.cb.OnLevelUpdate != nil {
		go c.dispatchLevels(r)
	}

	c.log.Info("recording started", logger.Fields("mime_type", r.mime))
	return nil
}

// Pause freezes capture and the counter. It only applies while recording.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	if c.status != StatusRecording {
		c.mu.Unlock()
		return false
	}
	r := c.run
	if err := r.stream.Pause(); err != nil {
		c.mu.Unlock()
		c.log.Warn("failed to pause stream", logger.ErrorFields("pause", err))
		return false
	}
	ls := r.loops
	r.loops = nil
	c.status = StatusPaused
	c.level = 0
	c.mu.Unlock()

	ls.stop()
	c.log.Debug("recording paused", logger.Fields("elapsed_s", c.Elapsed()))
	return true
}

// Resume continues a paused recording; the counter carries on from its
// kept value. It only applies while paused.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPaused {
		return false
	}
	r := c.run
	if err := r.stream.Resume(); err != nil {
		c.log.Warn("failed to resume stream", logger.ErrorFields("resume", err))
		return false
	}
	c.status = StatusRecording
	r.loops = c.startLoops(r)
	c.log.Debug("recording resumed", logger.Fields("elapsed_s", c.elapsed))
	return true
}

// Stop finishes the recording and returns the captured audio with the
// elapsed seconds. OnComplete fires once. Without an active capture it
// returns an empty Artifact, 0 and false.
func (c *Controller) Stop() (Artifact, int, bool) {
	c.mu.Lock()
	if c.status != StatusRecording && c.status != StatusPaused {
		c.mu.Unlock()
		return Artifact{}, 0, false
	}
	r := c.run
	c.run = nil
	ls := r.loops
	r.loops = nil
	c.status = StatusStopped
	c.level = 0
	elapsed := c.elapsed
	close(r.retired)
	c.mu.Unlock()

	ls.stop()
	if err := r.stream.Close(); err != nil {
		c.log.Warn("failed to close stream", logger.ErrorFields("close", err))
	}
	<-r.captured

	c.mu.Lock()
	artifact := newArtifact(r.chunks, r.mime)
	c.lastChunks = len(r.chunks)
	c.mu.Unlock()

	c.log.Info("recording stopped", logger.Fields("elapsed_s", elapsed, "bytes", artifact.Size(), "chunks", len(r.chunks)))
	if c.cb.OnComplete != nil {
		c.cb.OnComplete(artifact, elapsed)
	}
	return artifact, elapsed, true
}

// Cancel discards any capture and returns to idle from every state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	r := c.run
	c.run = nil
	c.epoch++
	c.status = StatusIdle
	c.elapsed = 0
	c.level = 0
	c.err = nil
	c.lastChunks = 0
	c.lastMime = ""
	var ls *loopSet
	if r != nil {
		ls = r.loops
		r.loops = nil
		close(r.retired)
	}
	c.mu.Unlock()

	if r == nil {
		return
	}
	ls.stop()
	_ = r.stream.Close()
	<-r.captured
	c.log.Info("recording cancelled")
}

// Close releases the device. It is Cancel under a name suited to defer
// and may be called more than once.
func (c *Controller) Close() error {
	c.Cancel()
	return nil
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Session{
		Status:         c.status,
		ElapsedSeconds: c.elapsed,
		Level:          c.level,
		Chunks:         c.lastChunks,
		MimeType:       c.lastMime,
		Err:            c.err,
	}
	if c.run != nil {
		s.Chunks = len(c.run.chunks)
	}
	return s
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Elapsed returns the counted seconds.
func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Level returns the last sampled input level.
func (c *Controller) Level() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// startLoops must be called with c.mu held.
func (c *Controller) startLoops(r *run) *loopSet {
	ctx, cancel := context.WithCancel(context.Background())
	ls := &loopSet{cancel: cancel}
	ls.wg.Add(2)
	go c.meter(ctx, r, ls)
	go c.count(ctx, r, ls)
	return ls
}

// active reports whether ls is the live loop set. Must be called with c.mu held.
func (c *Controller) active(r *run, ls *loopSet) bool {
	return c.run == r && r.loops == ls && c.status == StatusRecording
}

func (c *Controller) count(ctx context.Context, r *run, ls *loopSet) {
	defer ls.wg.Done()
	t := c.newTicker(c.tickInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			c.mu.Lock()
			if !c.active(r, ls) {
				c.mu.Unlock()
				return
			}
			c.elapsed++
			c.mu.Unlock()
		}
	}
}

func (c *Controller) meter(ctx context.Context, r *run, ls *loopSet) {
	defer ls.wg.Done()
	t := c.newTicker(c.meterInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			level := r.stream.Level()
			c.mu.Lock()
			if !c.active(r, ls) {
				c.mu.Unlock()
				return
			}
			c.level = level
			c.mu.Unlock()
			r.publish(level)
		}
	}
}

// dispatchLevels hands levels to OnLevelUpdate until the run ends. It may
// block in the callback for as long as the host likes; commands issued
// meanwhile do not wait for it. Levels queued while paused are dropped.
func (c *Controller) dispatchLevels(r *run) {
	for {
		select {
		case <-r.retired:
			return
		case level := <-r.levels:
			if c.Status() != StatusRecording {
				continue
			}
			select {
			case <-r.retired:
				return
			default:
			}
			c.cb.OnLevelUpdate(level)
		}
	}
}

func (c *Controller) capture(r *run) {
	defer close(r.captured)
	for {
		chunk, err := r.stream.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.fail(r, err)
			}
			return
		}
		if len(chunk) == 0 {
			continue
		}
		c.mu.Lock()
		r.chunks = append(r.chunks, chunk)
		c.mu.Unlock()
	}
}

// fail handles a runtime stream error reported by the capture goroutine.
func (c *Controller) fail(r *run, err error) {
	c.mu.Lock()
	if c.run != r {
		// Already stopped or cancelled; the error is a side effect of Close.
		c.mu.Unlock()
		return
	}
	derr := classify(err)
	c.run = nil
	ls := r.loops
	r.loops = nil
	c.status = StatusError
	c.err = derr
	c.level = 0
	c.lastChunks = len(r.chunks)
	close(r.retired)
	c.mu.Unlock()

	ls.stop()
	_ = r.stream.Close()

	c.log.Error("capture failed", logger.Fields("kind", string(derr.Kind), logger.FieldError, err.Error()))
	c.fireError(derr)
}

func (c *Controller) fireError(derr *DeviceError) {
	if c.cb.OnError != nil {
		c.cb.OnError(derr.Kind, derr.Message)
	}
}
