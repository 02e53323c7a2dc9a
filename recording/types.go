package recording

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	apperrors "github.com/kbukum/meetingmind/errors"
)

// Status of a Controller.
type Status string

// Statuses.
const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusError     Status = "error"
)

// Session is a point-in-time view of a Controller.
type Session struct {
	Status         Status       `json:"status"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
	Level          float64      `json:"level"`
	Chunks         int          `json:"chunks"`
	MimeType       string       `json:"mimeType,omitempty"`
	Err            *DeviceError `json:"error,omitempty"`
}

// Device opens capture streams. Open may block while the user is asked
// for permission.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open capture. Read blocks for the next chunk and returns
// io.EOF once the stream is closed and drained. Level must be safe to call
// concurrently with Read.
type Stream interface {
	MimeType() string
	Read() ([]byte, error)
	Level() float64
	Pause() error
	Resume() error
	Close() error
}

// Mime types in order of preference.
const (
	MimeWebM = "audio/webm"
	MimeMP4  = "audio/mp4"
)

// PreferredMimeType picks audio/webm when supported and audio/mp4 otherwise.
func PreferredMimeType(supported func(string) bool) string {
	if supported != nil && supported(MimeWebM) {
		return MimeWebM
	}
	return MimeMP4
}

// Artifact is the finished recording.
type Artifact struct {
	Data     []byte
	MimeType string
}

// Size returns the artifact length in bytes.
func (a Artifact) Size() int { return len(a.Data) }

func newArtifact(chunks [][]byte, mime string) Artifact {
	return Artifact{Data: bytes.Join(chunks, nil), MimeType: mime}
}

// LevelFromBins converts frequency-bin magnitudes (0-255) to a meter level:
// the mean bin value divided by 128.
func LevelFromBins(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	var sum int
	for _, b := range bins {
		sum += int(b)
	}
	return float64(sum) / float64(len(bins)) / 128
}

// Callbacks receive controller events. Any field may be nil.
type Callbacks struct {
	OnLevelUpdate func(level float64)
	OnComplete    func(a Artifact, elapsedSeconds int)
	OnError       func(kind ErrorKind, message string)
}

// ErrorKind classifies device failures.
type ErrorKind string

// Error kinds.
const (
	KindPermissionDenied ErrorKind = "permission_denied"
	KindDeviceNotFound   ErrorKind = "device_not_found"
	KindDevice           ErrorKind = "device_error"
)

// Sentinel errors devices return (or wrap) to classify failures.
var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrDeviceNotFound   = errors.New("no microphone found")
)

// DeviceError is a classified device failure.
type DeviceError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("recording: %s: %s", e.Kind, e.Message)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// AppError maps the failure onto the shared error taxonomy.
func (e *DeviceError) AppError() *apperrors.AppError {
	switch e.Kind {
	case KindPermissionDenied:
		return apperrors.PermissionDenied("microphone").WithCause(e.Err)
	case KindDeviceNotFound:
		return apperrors.DeviceNotFound("microphone").WithCause(e.Err)
	default:
		return apperrors.DeviceError("microphone", e.Err)
	}
}

func classify(err error) *DeviceError {
	var derr *DeviceError
	switch {
	case errors.As(err, &derr):
		return derr
	case errors.Is(err, ErrPermissionDenied):
		return &DeviceError{Kind: KindPermissionDenied, Message: "Microphone access was denied. Allow access and try again.", Err: err}
	case errors.Is(err, ErrDeviceNotFound):
		return &DeviceError{Kind: KindDeviceNotFound, Message: "No microphone was found. Connect one and try again.", Err: err}
	default:
		return &DeviceError{Kind: KindDevice, Message: err.Error(), Err: err}
	}
}
