package tui

import (
	"time"

	"github.com/kbukum/meetingmind/recording"
	"github.com/kbukum/meetingmind/transcript"
)

// TickMsg asks the model to refresh from the controller snapshot.
type TickMsg time.Time

// LevelMsg carries a level sample from the controller's OnLevelUpdate.
type LevelMsg struct {
	Level float64
}

// TranscriptMsg carries the segmenter state after a recognition event.
type TranscriptMsg struct {
	Segments []transcript.Segment
	Interim  string
}

// TranscriptDoneMsg signals that the recognizer has no more events.
type TranscriptDoneMsg struct {
	Err error
}

// DeviceErrorMsg carries a failure reported through OnError.
type DeviceErrorMsg struct {
	Kind    recording.ErrorKind
	Message string
}

// Key bindings.
const (
	keyPause  = " "
	keyPauseP = "p"
	keyStop   = "s"
	keyEnter  = "enter"
	keyCancel = "c"
	keyEsc    = "esc"
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
)
