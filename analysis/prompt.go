package analysis

import (
	"strings"
)

const outputShape = `{
  "summary": {
    "executive": "2-3 sentence executive summary of the meeting",
    "detailed": "Detailed multi-paragraph summary of the meeting",
    "bulletPoints": ["Key point 1", "Key point 2", "Key point 3"]
  },
  "actionItems": [
    {
      "description": "Task description",
      "assignee": "Person name or null",
      "dueDate": "YYYY-MM-DD or null",
      "priority": "high"
    }
  ],
  "decisions": [
    {
      "description": "What was decided",
      "consensus": "unanimous"
    }
  ],
  "topics": [
    {
      "name": "Topic discussed",
      "relevance": 0.9
    }
  ],
  "sentiment": {
    "score": 0.5,
    "magnitude": 0.5,
    "primaryEmotion": "positive"
  },
  "suggestedTitle": "Meeting title suggestion"
}`

var rules = []string{
	"Base ALL content strictly on what is in the transcript. Do not invent information.",
	`priority must be one of: "high", "medium", "low"`,
	`consensus must be one of: "unanimous", "majority", "contested"`,
	`primaryEmotion must be one of: "positive", "negative", "neutral", "mixed"`,
	"score ranges from -1.0 to 1.0, magnitude from 0.0 to 1.0, relevance from 0.0 to 1.0",
	"dueDate must be a calendar date in the form YYYY-MM-DD",
	"Use null for unknown values, empty arrays [] if no items exist",
	"bulletPoints must have at least 1 item",
	"Respond with the JSON object only, no markdown and no commentary",
}

// BuildPrompt returns the instruction prompt for a transcript. The
// transcript is embedded verbatim.
func BuildPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString("You are an expert meeting analyst. Analyze the following meeting transcript and return a JSON object.\n\n")
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nReturn this exact JSON structure:\n")
	b.WriteString(outputShape)
	b.WriteString("\n\nIMPORTANT RULES:\n")
	for _, r := range rules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildCorrectionPrompt is BuildPrompt followed by a block restating the
// constraints a previous reply violated.
func BuildCorrectionPrompt(transcript string, fields []string) string {
	if len(fields) == 0 {
		return BuildPrompt(transcript)
	}

	var b strings.Builder
	b.WriteString(BuildPrompt(transcript))
	b.WriteString("\n\nCORRECTION:\nYour previous response was rejected because these fields were missing or invalid:\n")
	for _, f := range fields {
		b.WriteString("- ")
		b.WriteString(f)
		if hint := fieldHint(f); hint != "" {
			b.WriteString(" (")
			b.WriteString(hint)
			b.WriteString(")")
		}
		b.WriteByte('\n')
	}
	b.WriteString("Return the complete JSON object again with every field valid.")
	return b.String()
}

// fieldHint names the allowed values for a field path such as
// "actionItems[0].priority".
func fieldHint(path string) string {
	name := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		name = path[i+1:]
	}
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "priority":
		return `one of "high", "medium", "low"`
	case "consensus":
		return `one of "unanimous", "majority", "contested"`
	case "primaryEmotion":
		return `one of "positive", "negative", "neutral", "mixed"`
	case "score":
		return "a number from -1.0 to 1.0"
	case "magnitude", "relevance":
		return "a number from 0.0 to 1.0"
	case "bulletPoints":
		return "at least 1 item"
	case "dueDate":
		return "YYYY-MM-DD or null"
	case "executive", "detailed":
		return "a non-empty string"
	default:
		return ""
	}
}

// QuickSummaryPrompt returns the free-text summary prompt.
func QuickSummaryPrompt(transcript string) string {
	return "Summarize this meeting in 2-3 sentences:\n\n" + transcript
}
