package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kbukum/meetingmind/analysis"
	apperrors "github.com/kbukum/meetingmind/errors"
	"github.com/kbukum/meetingmind/server"
)

var analyzeMinLength int

// analyzeCmd runs a full analysis of a transcript.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a transcript",
	Long: `Extract summary, action items, decisions, topics and sentiment from a
transcript file, or from stdin when no file (or "-") is given.

With the default fallback policy a failed analysis prints the placeholder
result; with analysis.policy=strict it exits non-zero.

Examples:
  meetingmind analyze meeting.txt
  meetingmind analyze -o json < meeting.txt
  meetingmind analyze --min-length 0 note.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

// summarizeCmd returns a short plain-text summary.
var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a transcript in 2-3 sentences",
	Long: `Produce a short plain-text summary of a transcript file or stdin.
A failed provider call prints the placeholder summary.

Examples:
  meetingmind summarize meeting.txt
  pbpaste | meetingmind summarize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeMinLength, "min-length", -1, "minimum transcript length in characters (default: server.min_transcript_length)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readTranscript(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	minLength := analyzeMinLength
	if minLength < 0 {
		minLength = cfg.Server.MinTranscriptLength
		if minLength == 0 {
			minLength = server.DefaultMinTranscriptLength
		}
	}
	if utf8.RuneCountInString(text) < minLength {
		return apperrors.Validation("Transcript too short for analysis").WithDetail("minLength", minLength)
	}

	application, stack, err := buildTask()
	if err != nil {
		return err
	}
	return application.RunTask(cmd.Context(), func(ctx context.Context) error {
		return analyzeAndPrint(ctx, cmd.OutOrStdout(), stack.Analyzer, text)
	})
}

func analyzeAndPrint(ctx context.Context, w io.Writer, a analysis.Analyzer, text string) error {
	out := a.Run(ctx, text)
	if out.Err != nil && !out.Fallback {
		return out.Err.AppError()
	}
	resp := server.AnalyzeResponse{
		Result: out.Result,
		Meta:   server.AnalyzeMeta{Attempts: out.Attempts, Fallback: out.Fallback, Cached: out.Cached},
	}
	if out.Err != nil {
		resp.Meta.Error = string(out.Err.Kind)
	}
	if outputFormat == outputJSON {
		return writeJSON(w, resp)
	}
	writeAnalysis(w, resp)
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	text, err := readTranscript(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if text == "" {
		return apperrors.Validation("Transcript required")
	}

	application, stack, err := buildTask()
	if err != nil {
		return err
	}
	return application.RunTask(cmd.Context(), func(ctx context.Context) error {
		summary := stack.Analyzer.QuickSummarize(ctx, text)
		if outputFormat == outputJSON {
			return writeJSON(cmd.OutOrStdout(), server.SummarizeResponse{Summary: summary})
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), summary)
		return err
	})
}

// readTranscript reads args[0], or stdin when there is no argument or it
// is "-". Surrounding whitespace is trimmed.
func readTranscript(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeAnalysis(w io.Writer, resp server.AnalyzeResponse) {
	r := resp.Result
	title := "Meeting analysis"
	if r.SuggestedTitle != nil && *r.SuggestedTitle != "" {
		title = *r.SuggestedTitle
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", utf8.RuneCountInString(title)))
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Summary.Executive)
	if r.Summary.Detailed != "" && r.Summary.Detailed != r.Summary.Executive {
		fmt.Fprintln(w)
		fmt.Fprintln(w, r.Summary.Detailed)
	}

	if len(r.Summary.BulletPoints) > 0 {
		fmt.Fprintln(w, "\nKey points:")
		for _, b := range r.Summary.BulletPoints {
			fmt.Fprintf(w, "  • %s\n", b)
		}
	}
	if len(r.ActionItems) > 0 {
		fmt.Fprintln(w, "\nAction items:")
		for _, a := range r.ActionItems {
			var extra []string
			if a.Assignee != nil {
				extra = append(extra, *a.Assignee)
			}
			if a.DueDate != nil {
				extra = append(extra, "due "+a.DueDate.String())
			}
			line := fmt.Sprintf("  [%s] %s", a.Priority, a.Description)
			if len(extra) > 0 {
				line += " (" + strings.Join(extra, ", ") + ")"
			}
			fmt.Fprintln(w, line)
		}
	}
	if len(r.Decisions) > 0 {
		fmt.Fprintln(w, "\nDecisions:")
		for _, d := range r.Decisions {
			fmt.Fprintf(w, "  - %s (%s)\n", d.Description, d.Consensus)
		}
	}
	if len(r.Topics) > 0 {
		fmt.Fprintln(w, "\nTopics:")
		for _, t := range r.Topics {
			fmt.Fprintf(w, "  %-30s %3.0f%%\n", t.Name, t.Relevance*100)
		}
	}
	fmt.Fprintf(w, "\nSentiment: %s (score %.2f, magnitude %.2f)\n",
		r.Sentiment.PrimaryEmotion, r.Sentiment.Score, r.Sentiment.Magnitude)

	switch {
	case resp.Meta.Fallback:
		fmt.Fprintf(w, "\nAnalysis failed after %d attempts (%s); showing a placeholder result.\n", resp.Meta.Attempts, resp.Meta.Error)
	case resp.Meta.Cached:
		fmt.Fprintln(w, "\n(cached result)")
	}
}
