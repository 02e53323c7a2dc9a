package transcript

import (
	"context"
	"strings"

	"github.com/kbukum/meetingmind/pipeline"
)

// Script replays lines of speech as recognition events, the way a live
// recognizer reports them: each line first arrives word by word as
// growing interim results, then once as a final result. It drives the
// segmenter when no recognizer is attached, e.g. in demos and tests.
// Blank lines are skipped.
func Script(lines []string) *pipeline.Pipeline[Event] {
	spoken := pipeline.Filter(pipeline.FromSlice(lines), func(line string) bool {
		return strings.TrimSpace(line) != ""
	})
	return pipeline.FlatMap(spoken, func(ctx context.Context, line string) (pipeline.Iterator[Event], error) {
		return pipeline.FromSlice(utterance(line)).Iter(ctx), nil
	})
}

func utterance(line string) []Event {
	words := strings.Fields(line)
	events := make([]Event, 0, len(words)+1)
	for i := 1; i <= len(words); i++ {
		events = append(events, Event{Results: []Result{{
			Alternatives: []Alternative{{Text: strings.Join(words[:i], " "), Confidence: 0.5}},
		}}})
	}
	events = append(events, Event{Results: []Result{{
		Alternatives: []Alternative{{Text: line, Confidence: 0.9}},
		IsFinal:      true,
	}}})
	return events
}
