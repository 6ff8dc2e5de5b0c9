package airtable

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx response from the Airtable API, enriched with the
// parsed error payload when the body carries one.
type APIError struct {
	StatusCode int
	Status     string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("airtable: %s (%s: %s)", e.Status, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable: %s", e.Status)
}

// errorEnvelope matches the two shapes Airtable uses for the error body:
// {"error": {"type": ..., "message": ...}} and {"error": "NOT_FOUND"}.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

func newAPIError(statusCode int, status string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Status: status}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		apiErr.Type = detail.Type
		apiErr.Message = detail.Message
		return apiErr
	}

	var plain string
	if err := json.Unmarshal(envelope.Error, &plain); err == nil {
		apiErr.Type = plain
	}
	return apiErr
}
