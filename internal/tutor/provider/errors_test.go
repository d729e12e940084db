package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpstreamMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"nested envelope", `{"error":{"message":"model not found"}}`, "model not found"},
		{"string error", `{"error":"bad request"}`, "bad request"},
		{"flat message", `{"message":"quota exceeded"}`, "quota exceeded"},
		{"plain text", `gateway timeout`, "gateway timeout"},
		{"empty", ``, "empty error response"},
		{"unrecognized json", `{"detail":"nope"}`, `{"detail":"nope"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, upstreamMessage([]byte(tc.body)))
		})
	}
}

func TestErrNetwork_TimeoutWording(t *testing.T) {
	err := errNetwork(Mistral, errors.New("context deadline exceeded"))
	require.Contains(t, err.Error(), "network request timeout")

	err = errNetwork(Mistral, errors.New("connection refused"))
	require.Contains(t, err.Error(), "network request failed")
}
