package analysis

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	apperrors "github.com/kbukum/meetingmind/errors"
)

func TestValidate_Valid(t *testing.T) {
	r, err := Validate(json.RawMessage(mustJSON(t, validReply())))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if r.Summary.Executive == "" || len(r.Summary.BulletPoints) != 2 {
		t.Errorf("summary = %+v", r.Summary)
	}
	if len(r.Topics) != 2 || r.Topics[0].Relevance != 0.9 {
		t.Errorf("topics = %+v", r.Topics)
	}
	if r.Sentiment.PrimaryEmotion != EmotionPositive {
		t.Errorf("primaryEmotion = %q", r.Sentiment.PrimaryEmotion)
	}
	if r.SuggestedTitle == nil || *r.SuggestedTitle != "Release planning" {
		t.Errorf("suggestedTitle = %v", r.SuggestedTitle)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		field  string
	}{
		{"score above range", func(m map[string]any) {
			m["sentiment"].(map[string]any)["score"] = 2.0
		}, "sentiment.score"},
		{"score below range", func(m map[string]any) {
			m["sentiment"].(map[string]any)["score"] = -1.5
		}, "sentiment.score"},
		{"negative magnitude", func(m map[string]any) {
			m["sentiment"].(map[string]any)["magnitude"] = -0.1
		}, "sentiment.magnitude"},
		{"relevance above range", func(m map[string]any) {
			m["topics"].([]any)[1].(map[string]any)["relevance"] = 1.2
		}, "topics[1].relevance"},
		{"unknown priority", func(m map[string]any) {
			m["actionItems"].([]any)[0].(map[string]any)["priority"] = "urgent"
		}, "actionItems[0].priority"},
		{"unknown consensus", func(m map[string]any) {
			m["decisions"].([]any)[0].(map[string]any)["consensus"] = "maybe"
		}, "decisions[0].consensus"},
		{"unknown emotion", func(m map[string]any) {
			m["sentiment"].(map[string]any)["primaryEmotion"] = "ecstatic"
		}, "sentiment.primaryEmotion"},
		{"bad due date", func(m map[string]any) {
			m["actionItems"].([]any)[0].(map[string]any)["dueDate"] = "next Friday"
		}, "actionItems[0].dueDate"},
		{"no bullet points", func(m map[string]any) {
			m["summary"].(map[string]any)["bulletPoints"] = []any{}
		}, "summary.bulletPoints"},
		{"missing summary", func(m map[string]any) {
			delete(m, "summary")
		}, "summary"},
		{"missing topics", func(m map[string]any) {
			delete(m, "topics")
		}, "topics"},
		{"blank executive summary", func(m map[string]any) {
			m["summary"].(map[string]any)["executive"] = "  \n\t"
		}, "summary.executive"},
		{"missing detailed summary", func(m map[string]any) {
			delete(m["summary"].(map[string]any), "detailed")
		}, "summary.detailed"},
		{"missing action description", func(m map[string]any) {
			delete(m["actionItems"].([]any)[0].(map[string]any), "description")
		}, "actionItems[0].description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validReply()
			tt.mutate(m)
			_, err := Validate(json.RawMessage(mustJSON(t, m)))

			var aerr *Error
			if !errors.As(err, &aerr) {
				t.Fatalf("Validate() error = %v, want *Error", err)
			}
			if aerr.Kind != KindSchema {
				t.Errorf("kind = %q, want %q", aerr.Kind, KindSchema)
			}
			if !slices.Contains(aerr.Fields, tt.field) {
				t.Errorf("fields = %v, want %q", aerr.Fields, tt.field)
			}
		})
	}
}

func TestValidate_WrongTypeIsSchemaError(t *testing.T) {
	m := validReply()
	m["sentiment"].(map[string]any)["score"] = "high"
	_, err := Validate(json.RawMessage(mustJSON(t, m)))

	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindSchema {
		t.Fatalf("Validate() error = %v, want schema error", err)
	}
}

func TestValidate_MalformedIsDecodeError(t *testing.T) {
	_, err := Validate(json.RawMessage(`{"summary":`))
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindDecode {
		t.Fatalf("Validate() error = %v, want decode error", err)
	}
}

func TestValidate_NullableFields(t *testing.T) {
	m := validReply()
	item := m["actionItems"].([]any)[0].(map[string]any)
	item["assignee"] = nil
	item["dueDate"] = ""
	delete(m, "suggestedTitle")

	r, err := Validate(json.RawMessage(mustJSON(t, m)))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if r.ActionItems[0].Assignee != nil || r.ActionItems[0].DueDate != nil {
		t.Errorf("action item = %+v, want null assignee and due date", r.ActionItems[0])
	}
	if r.SuggestedTitle != nil {
		t.Errorf("suggestedTitle = %v, want nil", *r.SuggestedTitle)
	}
}

func TestValidate_DueDate(t *testing.T) {
	m := validReply()
	m["actionItems"].([]any)[0].(map[string]any)["dueDate"] = "2026-10-16"

	r, err := Validate(json.RawMessage(mustJSON(t, m)))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := r.ActionItems[0].DueDate; got == nil || got.String() != "2026-10-16" {
		t.Errorf("dueDate = %v", got)
	}
	if !json.Valid([]byte(mustJSON(t, r))) {
		t.Error("result does not re-encode")
	}
}

func TestValidate_ZeroValuesAccepted(t *testing.T) {
	m := validReply()
	m["sentiment"].(map[string]any)["score"] = 0.0
	m["sentiment"].(map[string]any)["magnitude"] = 0.0
	m["topics"].([]any)[0].(map[string]any)["relevance"] = 0.0
	m["actionItems"] = []any{}

	if _, err := Validate(json.RawMessage(mustJSON(t, m))); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_KeysMatchCaseInsensitively(t *testing.T) {
	m := validReply()
	summary := m["summary"].(map[string]any)
	summary["Executive"] = summary["executive"]
	delete(summary, "executive")

	r, err := Validate(json.RawMessage(mustJSON(t, m)))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if r.Summary.Executive != "The team agreed to ship by Friday." {
		t.Errorf("executive = %q", r.Summary.Executive)
	}
}

func TestFallbackResultPassesSchema(t *testing.T) {
	if err := Check(FallbackResult()); err != nil {
		t.Fatalf("Check(FallbackResult()) = %v", err)
	}
}

func TestError_AppError(t *testing.T) {
	tests := []struct {
		err  *Error
		code apperrors.ErrorCode
	}{
		{&Error{Kind: KindSchema, Fields: []string{"sentiment.score"}}, apperrors.ErrCodeSchema},
		{&Error{Kind: KindDecode, Err: ErrNoJSON}, apperrors.ErrCodeDecode},
		{&Error{Kind: KindProvider, Err: errors.New("boom"), Attempts: 3}, apperrors.ErrCodeProvider},
	}
	for _, tt := range tests {
		appErr := tt.err.AppError()
		if appErr.Code != tt.code {
			t.Errorf("%s: code = %s, want %s", tt.err.Kind, appErr.Code, tt.code)
		}
		if !appErr.Retryable {
			t.Errorf("%s: not retryable", tt.err.Kind)
		}
	}
}
