// Package analysis turns a meeting transcript into a structured, validated
// Result using an LLM provider.
//
// Each attempt runs the same pipeline: build the instruction prompt, call
// the provider in JSON mode, decode the reply (direct parse, fenced block,
// balanced-brace scan) and pass it through the schema gate. Failed attempts
// are retried with exponential backoff. When the budget is spent the Engine
// either returns FallbackResult (PolicyFallback) or a typed *Error
// (PolicyStrict); a provider error never escapes any other way.
//
//	engine := analysis.NewEngine(provider,
//	    analysis.WithPolicy(analysis.PolicyFallback),
//	    analysis.WithLogger(log),
//	)
//	res, err := engine.Analyze(ctx, transcript)
package analysis
