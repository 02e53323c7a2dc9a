// Package llm provides a config-driven LLM adapter built on the httpclient
// package.
//
// The adapter works with any provider via the Dialect pattern, similar to
// how database/sql works with driver packages. Import a dialect package for
// its side-effect registration, then create an adapter:
//
//	import (
//	    "github.com/kbukum/meetingmind/llm"
//	    _ "github.com/kbukum/meetingmind/llm/gemini"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "gemini",
//	    Model:   "gemini-2.0-flash",
//	    APIKey:  key,
//	})
//
//	resp, err := adapter.Execute(ctx, llm.UserPrompt("Hello!"))
//
// The Adapter satisfies provider.RequestResponse, so it composes with the
// provider package's middleware (logging, tracing, metrics, resilience).
package llm
