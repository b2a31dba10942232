// Package api exposes the pet store over a small JSON REST API.
package api

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body of every API response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error messages that are not produced by the pet package.
const (
	msgInvalidBody   = "Invalid request body"
	msgInternalError = "Internal server error"
	msgInvalidLimit  = "limit must be a positive integer"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Nothing useful to do once the header is written
	json.NewEncoder(w).Encode(body)
}

func writeData[T any](w http.ResponseWriter, data T, message string) {
	writeJSON(w, http.StatusOK, Envelope[T]{
		Success: true,
		Data:    &data,
		Message: message,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope[struct{}]{
		Success: false,
		Error:   message,
	})
}
