package paygate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Fallback messages used when neither the backend nor the transport
// describes a failure.
const (
	MsgRequestFailed = "Request failed"
	MsgNetworkError  = "Network error"
)

// Result is the normalized outcome of every API call. Data is meaningful
// only when Success is true, Error only when it is false.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	// StatusCode is the HTTP status, or 0 when the request never got a response.
	StatusCode int `json:"-"`
}

// Ok wraps a successful payload.
func Ok[T any](data T, status int) Result[T] {
	return Result[T]{Success: true, Data: data, StatusCode: status}
}

// Fail builds a failed result.
func Fail[T any](msg string, status int) Result[T] {
	return Result[T]{Success: false, Error: msg, StatusCode: status}
}

// TransportFailure reports whether the request failed before any HTTP
// response was received.
func (r Result[T]) TransportFailure() bool {
	return !r.Success && r.StatusCode == 0
}

// Decode lifts a raw result into a typed one. A payload that does not match
// T becomes a failed result instead of an error.
func Decode[T any](raw Result[json.RawMessage]) Result[T] {
	if !raw.Success {
		return Fail[T](raw.Error, raw.StatusCode)
	}

	var out T
	if len(bytes.TrimSpace(raw.Data)) == 0 {
		return Ok(out, raw.StatusCode)
	}
	if err := json.Unmarshal(raw.Data, &out); err != nil {
		return Fail[T](fmt.Sprintf("invalid response: %v", err), raw.StatusCode)
	}
	return Ok(out, raw.StatusCode)
}

// errorMessage picks the backend's error field, then message, then the
// generic fallback. Non-string fields are ignored.
func errorMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return MsgRequestFailed
	}
	if s := stringField(payload.Error); s != "" {
		return s
	}
	if s := stringField(payload.Message); s != "" {
		return s
	}
	return MsgRequestFailed
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
