package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no decode stage finds a JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

// Stage extracts a JSON object from provider text. ok is false when the
// stage does not apply.
type Stage func(text string) (obj json.RawMessage, ok bool)

// Stages is the ordered decode pipeline.
var Stages = []Stage{DirectJSON, FencedJSON, BalancedJSON}

// Decode runs the stages in order and returns the first JSON object found.
func Decode(text string) (json.RawMessage, error) {
	for _, stage := range Stages {
		if obj, ok := stage(text); ok {
			return obj, nil
		}
	}
	return nil, ErrNoJSON
}

// DirectJSON accepts text that is a JSON object as a whole.
func DirectJSON(text string) (json.RawMessage, bool) {
	return asObject(text)
}

var fenceRe = regexp.MustCompile("```(?:json|JSON)?\\s*([\\s\\S]*?)```")

// FencedJSON accepts the first markdown code fence whose body is a JSON object.
func FencedJSON(text string) (json.RawMessage, bool) {
	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		if obj, ok := asObject(m[1]); ok {
			return obj, true
		}
	}
	return nil, false
}

// BalancedJSON scans for the first balanced {...} span that parses as JSON.
// Braces inside string literals and escaped quotes are skipped.
func BalancedJSON(text string) (json.RawMessage, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > 0 {
			if obj, ok := asObject(text[start : end+1]); ok {
				return obj, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func asObject(s string) (json.RawMessage, bool) {
	b := bytes.TrimSpace([]byte(s))
	if len(b) == 0 || b[0] != '{' || !json.Valid(b) {
		return nil, false
	}
	return json.RawMessage(b), true
}
