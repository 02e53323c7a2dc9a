package analysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority of an action item.
type Priority string

// Priority values.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Consensus reached on a decision.
type Consensus string

// Consensus values.
const (
	ConsensusUnanimous Consensus = "unanimous"
	ConsensusMajority  Consensus = "majority"
	ConsensusContested Consensus = "contested"
)

// Emotion is the dominant tone of a meeting.
type Emotion string

// Emotion values.
const (
	EmotionPositive Emotion = "positive"
	EmotionNegative Emotion = "negative"
	EmotionNeutral  Emotion = "neutral"
	EmotionMixed    Emotion = "mixed"
)

// Result is a validated meeting analysis.
type Result struct {
	Summary        Summary      `json:"summary"`
	ActionItems    []ActionItem `json:"actionItems"`
	Decisions      []Decision   `json:"decisions"`
	Topics         []Topic      `json:"topics"`
	Sentiment      Sentiment    `json:"sentiment"`
	SuggestedTitle *string      `json:"suggestedTitle,omitempty"`
}

// Summary holds the executive and detailed summaries.
type Summary struct {
	Executive    string   `json:"executive"`
	Detailed     string   `json:"detailed"`
	BulletPoints []string `json:"bulletPoints"`
}

// ActionItem is a task raised in the meeting.
type ActionItem struct {
	Description string   `json:"description"`
	Assignee    *string  `json:"assignee"`
	DueDate     *Date    `json:"dueDate"`
	Priority    Priority `json:"priority"`
}

// Decision is something the meeting settled.
type Decision struct {
	Description string    `json:"description"`
	Consensus   Consensus `json:"consensus"`
}

// Topic is a discussed subject with its relevance in [0, 1].
type Topic struct {
	Name      string  `json:"name"`
	Relevance float64 `json:"relevance"`
}

// Sentiment scores the meeting tone. Score is in [-1, 1], Magnitude in [0, 1].
type Sentiment struct {
	Score          float64 `json:"score"`
	Magnitude      float64 `json:"magnitude"`
	PrimaryEmotion Emotion `json:"primaryEmotion"`
}

// Date is a calendar date without time of day, encoded as "YYYY-MM-DD".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// String returns the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GenerateRequest is one call to a Provider.
type GenerateRequest struct {
	Prompt string
	// JSON asks the provider for JSON-only output.
	JSON        bool
	Temperature float64
}
