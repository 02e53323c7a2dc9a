package recording

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"
)

// fakeTicker is fired by the test. C is unbuffered so a successful send
// means the loop received the tick.
type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

type fakeClock struct {
	mu      sync.Mutex
	tickers map[time.Duration][]*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{tickers: make(map[time.Duration][]*fakeTicker)}
}

func (f *fakeClock) factory(d time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	f.mu.Lock()
	f.tickers[d] = append(f.tickers[d], t)
	f.mu.Unlock()
	return t
}

func (f *fakeClock) count(d time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers[d])
}

// tick fires the newest ticker for d, waiting for it to be created.
func (f *fakeClock) tick(t *testing.T, d time.Duration) {
	t.Helper()
	var tk *fakeTicker
	waitFor(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if ts := f.tickers[d]; len(ts) > 0 {
			tk = ts[len(ts)-1]
			return true
		}
		return false
	})
	select {
	case tk.c <- time.Now():
	case <-tk.stopped:
		t.Fatalf("ticker for %s already stopped", d)
	case <-time.After(time.Second):
		t.Fatalf("ticker for %s not consumed", d)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

type fakeStream struct {
	mime    string
	chunks  chan []byte
	readErr chan error
	closed  chan struct{}
	once    sync.Once

	mu      sync.Mutex
	level   float64
	pauses  int
	resumes int
}

func newFakeStream(mime string) *fakeStream {
	return &fakeStream{
		mime:    mime,
		chunks:  make(chan []byte, 16),
		readErr: make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

func (s *fakeStream) MimeType() string { return s.mime }

func (s *fakeStream) Read() ([]byte, error) {
	select {
	case b := <-s.chunks:
		return b, nil
	case err := <-s.readErr:
		return nil, err
	case <-s.closed:
		select {
		case b := <-s.chunks:
			return b, nil
		default:
			return nil, io.EOF
		}
	}
}

func (s *fakeStream) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

func (s *fakeStream) setLevel(l float64) {
	s.mu.Lock()
	s.level = l
	s.mu.Unlock()
}

func (s *fakeStream) Pause() error {
	s.mu.Lock()
	s.pauses++
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Resume() error {
	s.mu.Lock()
	s.resumes++
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeStream) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeDevice struct {
	mu      sync.Mutex
	opens   int
	err     error
	gate    chan struct{}
	streams []*fakeStream
}

func (d *fakeDevice) Open(ctx context.Context) (Stream, error) {
	d.mu.Lock()
	d.opens++
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	s := newFakeStream(MimeWebM)
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDevice) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

func (d *fakeDevice) last() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streams[len(d.streams)-1]
}
