// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application answers with JSON. Rather than
// repeating the same three steps (set header, set status, encode) in every
// handler, they live here, together with the error envelope shape API
// consumers can rely on:
//
//	{ "error": "Mountain not found" }
package response

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Messages shared by several handlers.
const (
	MsgMissingFields = "Missing required fields"
	MsgNotFound      = "Mountain not found"
	MsgUnauthorized  = "Unauthorized"
)

// Response is the envelope returned for every error.
// Fields is only filled for validation failures.
type Response struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return WriteBody(w, data)
}

// WriteBody encodes data into a response whose status line has already
// been written.
func WriteBody(w http.ResponseWriter, data any) error {
	return json.NewEncoder(w).Encode(data)
}

// WriteNoContent answers 204 with an empty body. The content type is set
// anyway so every response of the API carries it.
func WriteNoContent(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNoContent)
}

// GeneralError wraps any Go error into the standard Response shape.
// Use this for decode failures and unexpected storage errors.
func GeneralError(err error) Response {
	return Response{Error: err.Error()}
}

// Message builds a Response from a fixed message.
func Message(msg string) Response {
	return Response{Error: msg}
}

// ValidationError turns validator field errors into a single Response.
// The field names reported are whatever the validator was configured to
// use (the JSON names in this application).
//
// Example output:
//
//	{ "error": "Missing required fields", "fields": ["name", "height"] }
func ValidationError(errs validator.ValidationErrors) Response {
	fields := make([]string, 0, len(errs))
	onlyRequired := true

	for _, e := range errs {
		fields = append(fields, e.Field())
		if e.ActualTag() != "required" {
			onlyRequired = false
		}
	}

	msg := MsgMissingFields
	if !onlyRequired {
		msg = "Invalid fields"
	}

	return Response{Error: msg, Fields: fields}
}
