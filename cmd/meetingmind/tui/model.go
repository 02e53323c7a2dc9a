// Package tui renders a live recording session: status, elapsed time, an
// input level meter and the transcript as it is recognized.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kbukum/meetingmind/recording"
	"github.com/kbukum/meetingmind/transcript"
)

// DefaultRefresh is how often the model polls the controller.
const DefaultRefresh = 200 * time.Millisecond

// Controller is the part of recording.Controller the TUI drives.
type Controller interface {
	Pause() bool
	Resume() bool
	Stop() (recording.Artifact, int, bool)
	Cancel()
	Snapshot() recording.Session
}

var _ Controller = (*recording.Controller)(nil)

// Result is what the session produced once the program exits.
type Result struct {
	// Stopped is true when the user finished the recording.
	Stopped bool
	// Cancelled is true when the recording was discarded.
	Cancelled bool
	Artifact  recording.Artifact
	Elapsed   int
	Segments  []transcript.Segment
}

// Model is the bubbletea model of a recording session.
type Model struct {
	ctrl    Controller
	title   string
	refresh time.Duration

	session        recording.Session
	level          float64
	segments       []transcript.Segment
	interim        string
	transcriptDone bool
	errorMessage   string

	width  int
	height int

	stopping bool
	result   Result
}

// stoppedMsg carries the return values of Controller.Stop.
type stoppedMsg struct {
	artifact recording.Artifact
	elapsed  int
	ok       bool
}

// New creates a model for ctrl. The recording is expected to be started
// by the caller.
func New(ctrl Controller, title string) Model {
	return Model{
		ctrl:    ctrl,
		title:   title,
		refresh: DefaultRefresh,
		session: ctrl.Snapshot(),
	}
}

// WithRefresh overrides the polling interval.
func (m Model) WithRefresh(d time.Duration) Model {
	if d > 0 {
		m.refresh = d
	}
	return m
}

// Result returns the outcome. It is meaningful after the program exits.
func (m Model) Result() Result {
	r := m.result
	r.Segments = append([]transcript.Segment(nil), m.segments...)
	return r
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.refresh)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Controller commands run as tea.Cmds, off the event loop that also
// receives the controller's callbacks.

// commandDoneMsg follows Pause or Resume.
type commandDoneMsg struct{}

// cancelledMsg follows Cancel.
type cancelledMsg struct{}

func pauseCmd(ctrl Controller, resume bool) tea.Cmd {
	return func() tea.Msg {
		if resume {
			ctrl.Resume()
		} else {
			ctrl.Pause()
		}
		return commandDoneMsg{}
	}
}

func cancelCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Cancel()
		return cancelledMsg{}
	}
}

func stopCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		a, elapsed, ok := ctrl.Stop()
		return stoppedMsg{artifact: a, elapsed: elapsed, ok: ok}
	}
}

// Update handles messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.session = m.ctrl.Snapshot()
		m.level = m.session.Level
		if m.session.Err != nil && m.errorMessage == "" {
			m.errorMessage = m.session.Err.Message
		}
		return m, tickCmd(m.refresh)

	case LevelMsg:
		m.level = msg.Level
		return m, nil

	case TranscriptMsg:
		m.segments = msg.Segments
		m.interim = msg.Interim
		return m, nil

	case TranscriptDoneMsg:
		m.transcriptDone = true
		m.interim = ""
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.errorMessage = "transcript: " + msg.Err.Error()
		}
		return m, nil

	case DeviceErrorMsg:
		m.errorMessage = fmt.Sprintf("%s: %s", msg.Kind, msg.Message)
		return m, nil

	case commandDoneMsg:
		m.session = m.ctrl.Snapshot()
		return m, nil

	case cancelledMsg:
		m.session = m.ctrl.Snapshot()
		return m, tea.Quit

	case stoppedMsg:
		m.result.Stopped = msg.ok
		m.result.Artifact = msg.artifact
		m.result.Elapsed = msg.elapsed
		m.session = m.ctrl.Snapshot()
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) active() bool {
	return m.session.Status == recording.StatusRecording || m.session.Status == recording.StatusPaused
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.stopping {
		return m, nil
	}
	switch msg.String() {
	case keyPause, keyPauseP:
		switch m.session.Status {
		case recording.StatusRecording:
			return m, pauseCmd(m.ctrl, false)
		case recording.StatusPaused:
			return m, pauseCmd(m.ctrl, true)
		}
		return m, nil

	case keyStop, keyEnter:
		if !m.active() {
			return m, nil
		}
		m.stopping = true
		return m, stopCmd(m.ctrl)

	case keyCancel, keyEsc, keyQuit, keyCtrlC:
		if m.active() {
			m.result.Cancelled = true
		}
		m.stopping = true
		return m, cancelCmd(m.ctrl)
	}
	return m, nil
}

// View renders the session.
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 60
	}

	sections := []string{
		titleStyle.Render(strings.ToUpper(m.title)),
		m.renderStatusBar(),
		dividerStyle.Render(strings.Repeat("─", width)),
		m.renderTranscript(width),
		dividerStyle.Render(strings.Repeat("─", width)),
	}
	if m.errorMessage != "" {
		sections = append(sections, errorStyle.Render("Error: ")+m.errorMessage)
	}
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderStatusBar() string {
	var dot string
	switch m.session.Status {
	case recording.StatusRecording:
		dot = recordingStyle.Render("● REC")
	case recording.StatusPaused:
		dot = pausedStyle.Render("❚❚ PAUSED")
	case recording.StatusStopped:
		dot = idleStyle.Render("■ STOPPED")
	case recording.StatusError:
		dot = errorStyle.Render("✗ ERROR")
	default:
		dot = idleStyle.Render("○ IDLE")
	}
	if m.stopping {
		dot = idleStyle.Render("… STOPPING")
	}

	status := dot + "  " + elapsedStyle.Render(FormatElapsed(m.session.ElapsedSeconds))
	if m.active() {
		status += "  " + renderLevelMeter(m.level)
	}
	if m.session.Chunks > 0 {
		status += "  " + dimStyle.Render(fmt.Sprintf("%d chunks", m.session.Chunks))
	}
	return status
}

// FormatElapsed renders seconds as MM:SS, or H:MM:SS past an hour.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, rem := seconds/3600, seconds%3600
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, rem/60, rem%60)
	}
	return fmt.Sprintf("%02d:%02d", rem/60, rem%60)
}

func renderLevelMeter(level float64) string {
	const barLen = 16
	filled := int(level * barLen)
	filled = max(0, min(filled, barLen))

	var bar strings.Builder
	for i := 0; i < barLen; i++ {
		switch {
		case i >= filled:
			bar.WriteString(levelOffStyle.Render("░"))
		case float64(i)/barLen > 0.6:
			bar.WriteString(levelHighStyle.Render("█"))
		default:
			bar.WriteString(levelLowStyle.Render("█"))
		}
	}
	return dimStyle.Render("MIC ") + bar.String()
}

func (m Model) renderTranscript(width int) string {
	var lines []string
	for _, seg := range m.segments {
		prefix := seg.Speaker + ": "
		for i, l := range wrapText(seg.Text, width-lipgloss.Width(prefix)) {
			if i == 0 {
				lines = append(lines, speakerStyle.Render(seg.Speaker+":")+" "+l)
			} else {
				lines = append(lines, strings.Repeat(" ", len(prefix))+l)
			}
		}
	}
	if m.interim != "" {
		for _, l := range wrapText(m.interim, width) {
			lines = append(lines, interimStyle.Render(l))
		}
	}
	if len(lines) == 0 {
		if m.transcriptDone {
			return dimStyle.Render("No speech recognized.")
		}
		return dimStyle.Render("Listening...")
	}

	// Keep the latest lines when the terminal is short.
	if visible := m.height - 6; m.height > 0 && visible > 0 && len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var parts []string
	switch m.session.Status {
	case recording.StatusRecording:
		parts = append(parts, footerKey("Space", "Pause"), footerKey("s", "Stop"), footerKey("c", "Cancel"))
	case recording.StatusPaused:
		parts = append(parts, footerKey("Space", "Resume"), footerKey("s", "Stop"), footerKey("c", "Cancel"))
	}
	parts = append(parts, footerKey("q", "Quit"))
	return strings.Join(parts, "  ")
}

func footerKey(key, desc string) string {
	return footerKeyStyle.Render(key) + footerDescStyle.Render(" "+desc)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" || len(lines) == 0 {
		lines = append(lines, current)
	}
	return lines
}
