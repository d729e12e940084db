package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error is what an adapter returns when the upstream call fails. The message
// keeps whatever the vendor said, because the dispatcher classifies the final
// HTTP status from that text.
type Error struct {
	Provider   Name
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// errKeyMissing is fatal and never retried; the dispatcher normally catches
// the missing key before an adapter is even called.
func errKeyMissing(name Name) error {
	return &Error{
		Provider: name,
		Message:  fmt.Sprintf("%s API key not configured (set %s)", strings.ToUpper(name.String()), name.EnvVar()),
	}
}

// errNetwork wraps transport-level failures (DNS, connect, timeout). The word
// "network" is load-bearing: it is what maps these to 503 at the edge.
func errNetwork(name Name, err error) error {
	msg := fmt.Sprintf("network request failed: %v", err)
	if strings.Contains(strings.ToLower(err.Error()), "deadline") ||
		strings.Contains(strings.ToLower(err.Error()), "timeout") {
		msg = fmt.Sprintf("network request timeout: %v", err)
	}
	return &Error{Provider: name, Message: msg}
}

// errUpstream converts a non-2xx response into an Error carrying the vendor's
// own message when the body parses, else the raw body text.
func errUpstream(name Name, status int, body []byte) error {
	return &Error{
		Provider:   name,
		StatusCode: status,
		Message:    upstreamMessage(body),
	}
}

func errMalformed(name Name, field string) error {
	return &Error{
		Provider: name,
		Message:  fmt.Sprintf("malformed response: missing %s", field),
	}
}

// upstreamMessage digs the human message out of the common vendor error
// envelopes: {"error":{"message":...}}, {"error":"..."} and {"message":...}.
func upstreamMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "empty error response"
	}
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return raw
	}
	if len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if err := json.Unmarshal(envelope.Error, &plain); err == nil && plain != "" {
			return plain
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return raw
}
