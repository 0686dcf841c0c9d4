// Package httpx provides JSON response utilities shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape used across the API: a status marker
// ("success", "fail" or "error"), a human message and an optional payload.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Results *int   `json:"results,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends a success envelope.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// SuccessList sends a success envelope with a result count, matching the
// listing endpoints' shape.
func SuccessList(w http.ResponseWriter, message string, count int, data any) {
	JSON(w, http.StatusOK, Envelope{Status: "success", Message: message, Data: data, Results: &count})
}

// Fail sends a fail envelope for client errors.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: "fail", Message: message})
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
