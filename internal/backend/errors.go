package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnauthorized means the backend rejected the bearer token.
var ErrUnauthorized = errors.New("backend: unauthorized")

// APIError carries a backend failure message, either from an error status or
// from a status:false / success:false envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// ValidationError is a 422 response with per-field messages.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// First returns the first message for field, if any.
func (e *ValidationError) First(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Flatten lists every field message in field order.
func (e *ValidationError) Flatten() []string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var out []string
	for _, field := range fields {
		out = append(out, e.Fields[field]...)
	}
	return out
}

// UserMessage turns an error from this package into text fit for a flash
// message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		if msgs := validation.Flatten(); len(msgs) > 0 {
			return strings.Join(msgs, " ")
		}
		return validation.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, ErrUnauthorized) {
		return "Session expired, please sign in again"
	}
	return "Service unavailable, please try again"
}
