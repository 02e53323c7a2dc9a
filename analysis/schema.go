package analysis

import (
	"encoding/json"
	"errors"

	"github.com/kbukum/meetingmind/validation"
)

// wireResult mirrors Result with pointers so that missing values and zero
// values can be told apart by the validator.
type wireResult struct {
	Summary        *wireSummary     `json:"summary" validate:"required"`
	ActionItems    []wireActionItem `json:"actionItems" validate:"required,dive"`
	Decisions      []wireDecision   `json:"decisions" validate:"required,dive"`
	Topics         []wireTopic      `json:"topics" validate:"required,dive"`
	Sentiment      *wireSentiment   `json:"sentiment" validate:"required"`
	SuggestedTitle *string          `json:"suggestedTitle"`
}

type wireSummary struct {
	Executive    string   `json:"executive" validate:"notblank"`
	Detailed     string   `json:"detailed" validate:"notblank"`
	BulletPoints []string `json:"bulletPoints" validate:"required,min=1"`
}

type wireActionItem struct {
	Description *string `json:"description" validate:"required"`
	Assignee    *string `json:"assignee"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    string  `json:"priority" validate:"required,oneof=high medium low"`
}

type wireDecision struct {
	Description *string `json:"description" validate:"required"`
	Consensus   string  `json:"consensus" validate:"required,oneof=unanimous majority contested"`
}

type wireTopic struct {
	Name      *string  `json:"name" validate:"required"`
	Relevance *float64 `json:"relevance" validate:"required,gte=0,lte=1"`
}

type wireSentiment struct {
	Score          *float64 `json:"score" validate:"required,gte=-1,lte=1"`
	Magnitude      *float64 `json:"magnitude" validate:"required,gte=0,lte=1"`
	PrimaryEmotion string   `json:"primaryEmotion" validate:"required,oneof=positive negative neutral mixed"`
}

// Validate is the schema gate: it accepts a decoded JSON object only when
// every field satisfies its constraint. Out-of-range values are rejected,
// never clamped. Failures are *Error of KindSchema listing field paths
// such as "sentiment.score" or "topics[1].relevance". Object keys match
// case-insensitively, so "Executive" fills summary.executive. Unknown keys
// are ignored.
func Validate(obj json.RawMessage) (Result, error) {
	var w wireResult
	if err := json.Unmarshal(obj, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Result{}, &Error{Kind: KindSchema, Fields: []string{typeErr.Field}, Err: err}
		}
		return Result{}, &Error{Kind: KindDecode, Err: err}
	}

	w.normalize()
	if err := validation.Validate(&w); err != nil {
		return Result{}, &Error{Kind: KindSchema, Fields: validation.FieldsOf(err), Err: err}
	}
	return w.result(), nil
}

// normalize treats an empty dueDate string as null.
func (w *wireResult) normalize() {
	for i := range w.ActionItems {
		if d := w.ActionItems[i].DueDate; d != nil && *d == "" {
			w.ActionItems[i].DueDate = nil
		}
	}
}

func (w *wireResult) result() Result {
	r := Result{
		Summary: Summary{
			Executive:    w.Summary.Executive,
			Detailed:     w.Summary.Detailed,
			BulletPoints: w.Summary.BulletPoints,
		},
		ActionItems:    make([]ActionItem, len(w.ActionItems)),
		Decisions:      make([]Decision, len(w.Decisions)),
		Topics:         make([]Topic, len(w.Topics)),
		SuggestedTitle: w.SuggestedTitle,
		Sentiment: Sentiment{
			Score:          *w.Sentiment.Score,
			Magnitude:      *w.Sentiment.Magnitude,
			PrimaryEmotion: Emotion(w.Sentiment.PrimaryEmotion),
		},
	}
	for i, a := range w.ActionItems {
		item := ActionItem{
			Description: *a.Description,
			Assignee:    a.Assignee,
			Priority:    Priority(a.Priority),
		}
		if a.DueDate != nil {
			d, _ := ParseDate(*a.DueDate)
			item.DueDate = &d
		}
		r.ActionItems[i] = item
	}
	for i, d := range w.Decisions {
		r.Decisions[i] = Decision{Description: *d.Description, Consensus: Consensus(d.Consensus)}
	}
	for i, t := range w.Topics {
		r.Topics[i] = Topic{Name: *t.Name, Relevance: *t.Relevance}
	}
	return r
}

// Check runs an already-built Result through the schema gate.
func Check(r Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return &Error{Kind: KindDecode, Err: err}
	}
	_, err = Validate(data)
	return err
}
