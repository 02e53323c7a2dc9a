package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kbukum/meetingmind/analysis"
	"github.com/kbukum/meetingmind/app"
	"github.com/kbukum/meetingmind/bootstrap"
	"github.com/kbukum/meetingmind/cmd/meetingmind/tui"
	"github.com/kbukum/meetingmind/logger"
	"github.com/kbukum/meetingmind/pipeline"
	"github.com/kbukum/meetingmind/recording"
	"github.com/kbukum/meetingmind/recording/synth"
	"github.com/kbukum/meetingmind/server"
	"github.com/kbukum/meetingmind/transcript"
)

// Record command flags.
var (
	recordDuration time.Duration
	recordScript   string
	recordPace     time.Duration
	recordOut      string
	recordAnalyze  bool
	recordNoTUI    bool
	recordToneHz   float64
)

// recordCmd captures a session from the built-in tone device.
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a meeting session",
	Long: `Record audio from the built-in synthetic device while replaying a transcript
script through the segmenter, the way a live recognizer would.

In a terminal an interactive view shows status, elapsed time, the input
level and the transcript. Keys: space pause/resume, s stop, c cancel, q quit.
Without a terminal (or with --no-tui) the recording stops after --duration,
when the script ends, or on Ctrl+C.

Examples:
  meetingmind record --script standup.txt
  meetingmind record --script standup.txt --out standup.webm --analyze
  meetingmind record --no-tui --duration 10s -o json`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 0, "stop automatically after this long")
	recordCmd.Flags().StringVar(&recordScript, "script", "", "file with one spoken line per row")
	recordCmd.Flags().DurationVar(&recordPace, "pace", 400*time.Millisecond, "delay between recognition events")
	recordCmd.Flags().StringVar(&recordOut, "out", "", "write the recorded audio to this file")
	recordCmd.Flags().BoolVar(&recordAnalyze, "analyze", false, "analyze the transcript after stopping")
	recordCmd.Flags().BoolVar(&recordNoTUI, "no-tui", false, "disable the interactive view")
	recordCmd.Flags().Float64Var(&recordToneHz, "tone", 440, "frequency of the synthetic input in Hz")
}

// recordReport is the -o json output of record.
type recordReport struct {
	ElapsedSeconds int                     `json:"elapsedSeconds"`
	MimeType       string                  `json:"mimeType"`
	Bytes          int                     `json:"bytes"`
	File           string                  `json:"file,omitempty"`
	Segments       []transcript.Segment    `json:"segments"`
	Analysis       *server.AnalyzeResponse `json:"analysis,omitempty"`
}

func runRecord(cmd *cobra.Command, _ []string) error {
	lines, err := loadScript(recordScript)
	if err != nil {
		return err
	}

	var (
		application *bootstrap.App[*app.Config]
		analyzer    analysis.Analyzer
	)
	if recordAnalyze {
		var stack *app.Stack
		application, stack, err = buildTask()
		if err == nil {
			analyzer = stack.Analyzer
		}
	} else {
		application, err = newTaskApp()
	}
	if err != nil {
		return err
	}

	sess := &recordSession{
		lines:    lines,
		pace:     recordPace,
		log:      application.Logger,
		segments: transcript.NewSegmenter(transcript.WithLogger(application.Logger)),
	}
	interactive := !recordNoTUI && isTerminal(os.Stdout) && outputFormat == outputText

	return application.RunTask(cmd.Context(), func(ctx context.Context) error {
		var res tui.Result
		var err error
		if interactive {
			res, err = sess.runInteractive(ctx, cmd.OutOrStdout())
		} else {
			res, err = sess.runHeadless(ctx, recordDuration)
		}
		if err != nil {
			return err
		}
		return finishRecording(context.WithoutCancel(ctx), cmd.OutOrStdout(), res, sess.segments.Text(), analyzer)
	})
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func loadScript(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// recordSession couples a controller with the replayed transcript.
type recordSession struct {
	lines    []string
	pace     time.Duration
	log      *logger.Logger
	segments *transcript.Segmenter
	device   recording.Device
}

func (s *recordSession) newController(cb recording.Callbacks) *recording.Controller {
	dev := s.device
	if dev == nil {
		dev = synth.New(synth.Config{ToneHz: recordToneHz})
	}
	opts := append(cfg.Recording.Options(), recording.WithLogger(s.log))
	return recording.NewController(dev, cb, opts...)
}

// transcribe replays the script into the segmenter. Events wait while the
// controller is paused. notify runs after every handled event.
func (s *recordSession) transcribe(ctx context.Context, ctrl *recording.Controller, notify func()) error {
	events := pipeline.Tap(pipeline.Pace(transcript.Script(s.lines), s.pace), func(ctx context.Context, _ transcript.Event) error {
		return waitWhilePaused(ctx, ctrl)
	})
	return s.segments.Consume(ctx, events, notify)
}

func waitWhilePaused(ctx context.Context, ctrl *recording.Controller) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for ctrl.Status() == recording.StatusPaused {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// runHeadless records until duration elapses, the script ends (when there
// is one and no duration) or ctx is cancelled, then stops.
func (s *recordSession) runHeadless(ctx context.Context, duration time.Duration) (tui.Result, error) {
	ctrl := s.newController(recording.Callbacks{
		OnError: func(kind recording.ErrorKind, message string) {
			s.log.Error("Recording failed", logger.Fields("kind", string(kind), logger.FieldError, message))
		},
	})
	defer ctrl.Close()

	if derr := ctrl.Start(ctx); derr != nil {
		return tui.Result{}, derr.AppError()
	}

	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.transcribe(tctx, ctrl, nil) }()

	var timeout <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		timeout = timer.C
	}
	scriptDone := done
	if duration > 0 || len(s.lines) == 0 {
		scriptDone = nil
	}

	var scriptErr error
	select {
	case <-ctx.Done():
	case <-timeout:
	case scriptErr = <-scriptDone:
	}
	if snap := ctrl.Snapshot(); snap.Err != nil {
		return tui.Result{}, snap.Err.AppError()
	}

	artifact, elapsed, ok := ctrl.Stop()
	cancel()
	if scriptDone == nil {
		<-done
	}
	if scriptErr != nil && !errors.Is(scriptErr, context.Canceled) {
		return tui.Result{}, scriptErr
	}
	return tui.Result{Stopped: ok, Artifact: artifact, Elapsed: elapsed, Segments: s.segments.Segments()}, nil
}

// runInteractive records under the bubbletea view until the user stops
// or cancels.
func (s *recordSession) runInteractive(ctx context.Context, out io.Writer) (tui.Result, error) {
	var prog *tea.Program
	send := func(msg tea.Msg) {
		if prog != nil {
			prog.Send(msg)
		}
	}
	ctrl := s.newController(recording.Callbacks{
		OnLevelUpdate: func(level float64) { send(tui.LevelMsg{Level: level}) },
		OnError: func(kind recording.ErrorKind, message string) {
			send(tui.DeviceErrorMsg{Kind: kind, Message: message})
		},
	})
	defer ctrl.Close()

	prog = tea.NewProgram(tui.New(ctrl, "meetingmind"), tea.WithContext(ctx), tea.WithOutput(out))

	if derr := ctrl.Start(ctx); derr != nil {
		return tui.Result{}, derr.AppError()
	}

	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := s.transcribe(tctx, ctrl, func() {
			send(tui.TranscriptMsg{Segments: s.segments.Segments(), Interim: s.segments.InterimText()})
		})
		send(tui.TranscriptDoneMsg{Err: err})
	}()

	final, err := prog.Run()
	cancel()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return tui.Result{}, err
	}
	m, ok := final.(tui.Model)
	if !ok {
		return tui.Result{Cancelled: true}, nil
	}
	res := m.Result()
	res.Segments = s.segments.Segments()
	return res, nil
}

func finishRecording(ctx context.Context, w io.Writer, res tui.Result, text string, analyzer analysis.Analyzer) error {
	if !res.Stopped {
		fmt.Fprintln(w, "Recording discarded.")
		return nil
	}

	report := recordReport{
		ElapsedSeconds: res.Elapsed,
		MimeType:       res.Artifact.MimeType,
		Bytes:          res.Artifact.Size(),
		Segments:       res.Segments,
	}
	if report.Segments == nil {
		report.Segments = []transcript.Segment{}
	}
	if recordOut != "" {
		if err := os.WriteFile(recordOut, res.Artifact.Data, 0o644); err != nil {
			return fmt.Errorf("writing recording: %w", err)
		}
		report.File = recordOut
	}

	if analyzer != nil && text != "" {
		out := analyzer.Run(ctx, text)
		if out.Err != nil && !out.Fallback {
			return out.Err.AppError()
		}
		report.Analysis = &server.AnalyzeResponse{
			Result: out.Result,
			Meta:   server.AnalyzeMeta{Attempts: out.Attempts, Fallback: out.Fallback, Cached: out.Cached},
		}
		if out.Err != nil {
			report.Analysis.Meta.Error = string(out.Err.Kind)
		}
	}

	if outputFormat == outputJSON {
		return writeJSON(w, report)
	}

	fmt.Fprintf(w, "Recorded %s (%d bytes, %s)", tui.FormatElapsed(report.ElapsedSeconds), report.Bytes, report.MimeType)
	if report.File != "" {
		fmt.Fprintf(w, " to %s", report.File)
	}
	fmt.Fprintln(w)
	if text != "" {
		fmt.Fprintln(w, "\nTranscript:")
		fmt.Fprintln(w, text)
	}
	if report.Analysis != nil {
		fmt.Fprintln(w)
		writeAnalysis(w, *report.Analysis)
	}
	return nil
}
