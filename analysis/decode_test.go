package analysis

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"direct", `{"a":1}`, `{"a":1}`},
		{"direct with whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "Here you go:\n```\n{\"a\":1}\n```\nThanks", `{"a":1}`},
		{"prose around object", `Sure! {"a":{"b":2}} Hope that helps.`, `{"a":{"b":2}}`},
		{"brace inside string", `Result: {"a":"}{","b":"\"}"} done`, `{"a":"}{","b":"\"}"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.text)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			var a, b any
			if err := json.Unmarshal(got, &a); err != nil {
				t.Fatalf("result is not JSON: %v", err)
			}
			_ = json.Unmarshal([]byte(tt.want), &b)
			if mustJSON(t, a) != mustJSON(t, b) {
				t.Errorf("Decode() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	for _, text := range []string{
		"",
		"no json here",
		"[1, 2, 3]",
		`{"a": 1`,
		"```json\nnot json\n```",
	} {
		if _, err := Decode(text); !errors.Is(err, ErrNoJSON) {
			t.Errorf("Decode(%q) error = %v, want ErrNoJSON", text, err)
		}
	}
}

func TestDecode_StageOrder(t *testing.T) {
	// Direct parsing wins before fences are considered.
	text := `{"outer":"` + "```json\\n{\\\"inner\\\":1}\\n```" + `"}`
	got, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(got, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["outer"]; !ok {
		t.Errorf("Decode() = %s, want the outer object", got)
	}
}
