package httpclient

import "net/http"

// AuthConfig attaches credentials to outgoing requests. Build one with
// BearerAuth, APIKeyAuthHeader or APIKeyAuthQuery.
type AuthConfig struct {
	header string
	query  string
	value  string
}

// BearerAuth sends "Authorization: Bearer <token>" (Ollama behind a proxy).
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{header: "Authorization", value: "Bearer " + token}
}

// APIKeyAuthHeader sends key in the named header (Gemini's x-goog-api-key).
func APIKeyAuthHeader(key, header string) *AuthConfig {
	if header == "" {
		header = "X-API-Key"
	}
	return &AuthConfig{header: header, value: key}
}

// APIKeyAuthQuery sends key as a query parameter.
func APIKeyAuthQuery(key, param string) *AuthConfig {
	return &AuthConfig{query: param, value: key}
}

func (a *AuthConfig) apply(req *http.Request) {
	switch {
	case a == nil:
	case a.query != "":
		q := req.URL.Query()
		q.Set(a.query, a.value)
		req.URL.RawQuery = q.Encode()
	default:
		req.Header.Set(a.header, a.value)
	}
}
