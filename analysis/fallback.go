package analysis

// FallbackResult is the fixed result returned under PolicyFallback once
// every attempt has failed. It passes the schema gate.
func FallbackResult() Result {
	title := "Untitled meeting"
	return Result{
		Summary: Summary{
			Executive:    "Analysis unavailable. The meeting could not be analyzed automatically.",
			Detailed:     "Automatic analysis failed after several attempts. The transcript was kept and can be analyzed again later.",
			BulletPoints: []string{"Analysis unavailable"},
		},
		ActionItems: []ActionItem{},
		Decisions:   []Decision{},
		Topics:      []Topic{},
		Sentiment: Sentiment{
			Score:          0,
			Magnitude:      0,
			PrimaryEmotion: EmotionNeutral,
		},
		SuggestedTitle: &title,
	}
}
