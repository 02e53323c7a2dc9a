package llm

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/meetingmind/httpclient"
)

// Dialect translates CompletionRequest and CompletionResponse to one
// provider's wire format. Implementations live in llm/gemini and
// llm/ollama and register from init; import them for side effects.
type Dialect interface {
	Name() string
	// DefaultBaseURL applies when Config.BaseURL is empty.
	DefaultBaseURL() string
	ChatPath(model string) string
	// HealthPath is requested by IsAvailable; "" disables the check.
	HealthPath() string
	// Auth places apiKey on requests; nil sends none.
	Auth(apiKey string) *httpclient.AuthConfig
	// BuildRequest returns the JSON-encodable request body.
	BuildRequest(req CompletionRequest) (any, error)
	ParseResponse(body []byte) (*CompletionResponse, error)
}

var registry = struct {
	sync.RWMutex
	m map[string]Dialect
}{m: map[string]Dialect{}}

// RegisterDialect makes d available under name, replacing any earlier one.
func RegisterDialect(name string, d Dialect) {
	registry.Lock()
	registry.m[name] = d
	registry.Unlock()
}

// GetDialect looks up a registered dialect.
func GetDialect(name string) (Dialect, error) {
	registry.RLock()
	d, ok := registry.m[name]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q (registered: %v)", name, Dialects())
	}
	return d, nil
}

// Dialects lists registered names in order.
func Dialects() []string {
	registry.RLock()
	defer registry.RUnlock()
	return slices.Sorted(maps.Keys(registry.m))
}
