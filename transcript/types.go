package transcript

import "fmt"

// Alternative is one recognition hypothesis.
type Alternative struct {
	Text       string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Result is one recognized phrase. Only the first alternative is used.
type Result struct {
	Alternatives []Alternative `json:"alternatives"`
	IsFinal      bool          `json:"isFinal"`
}

// Event is a recognition update. Results before ResultIndex were already
// delivered in earlier events.
type Event struct {
	Results     []Result `json:"results"`
	ResultIndex int      `json:"resultIndex"`
}

// Segment is a finalized, speaker-labelled piece of transcript.
type Segment struct {
	ID          string `json:"id"`
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	TimestampMs int64  `json:"timestamp"`
	IsFinal     bool   `json:"isFinal"`
}

// String renders the segment as "Speaker: text".
func (s Segment) String() string {
	return fmt.Sprintf("%s: %s", s.Speaker, s.Text)
}

// SpeakerLabeler names the speaker of the next final segment given how
// many segments have been finalized so far.
type SpeakerLabeler interface {
	Label(finalCount int) string
}

// CadenceLabeler advances to the next speaker every Every segments:
// "Speaker 1" for the first Every segments, then "Speaker 2", and so on.
type CadenceLabeler struct {
	Every int
}

// DefaultCadence is the segment count per speaker of the default labeler.
const DefaultCadence = 5

// Label implements SpeakerLabeler.
func (l CadenceLabeler) Label(finalCount int) string {
	every := l.Every
	if every <= 0 {
		every = DefaultCadence
	}
	return fmt.Sprintf("Speaker %d", finalCount/every+1)
}

// LabelerFunc adapts a function to SpeakerLabeler.
type LabelerFunc func(finalCount int) string

// Label calls f.
func (f LabelerFunc) Label(finalCount int) string { return f(finalCount) }
