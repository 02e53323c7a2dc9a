// Package security builds client TLS settings for the outbound connections
// meetingmind makes: the LLM provider over HTTPS and Redis.
//
//	llm:
//	  base_url: https://llm.internal:8443
//	  tls:
//	    ca_file: /etc/meetingmind/ca.pem
//
// A zero TLSConfig means "use the platform defaults".
package security
