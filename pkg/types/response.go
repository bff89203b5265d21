// Package types holds the wire envelopes shared by every admin API response.
package types

// SuccessEnvelope wraps all 2xx payloads, so list endpoints always serialize
// an array under "data" even when empty.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
