package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "memochat/internal/errors"
)

// This file contains shared DTOs (Data Transfer Objects) for API responses
// and helper functions for sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse defines a generic success response.
type StatusResponse struct {
	Status string `json:"status"`
}

// errorStatus maps a business-layer error to an HTTP status and a message
// that is safe to show to the user.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, app_errors.ErrDuplicateUsername):
		return http.StatusConflict, msgDuplicateUsername
	case errors.Is(err, app_errors.ErrAuthFailure):
		return http.StatusUnauthorized, msgInvalidLogin
	case errors.Is(err, app_errors.ErrUnauthenticated):
		return http.StatusUnauthorized, "Please log in first."
	case errors.Is(err, app_errors.ErrNotFound):
		return http.StatusNotFound, "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		// Validation messages are already descriptive.
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		return http.StatusConflict, "A conflict occurred with the current state of the resource."
	case errors.Is(err, app_errors.ErrPermission):
		return http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, app_errors.ErrCompletionService):
		return http.StatusBadGateway, "The assistant is unavailable right now. Please try again."
	case errors.Is(err, app_errors.ErrPersistence):
		return http.StatusServiceUnavailable, "The conversation store is unavailable. Please try again later."
	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}

// respondWithError is the centralized error handling function for JSON endpoints.
func respondWithError(w http.ResponseWriter, err error) {
	statusCode, message := errorStatus(err)

	// The detailed error is logged; only the generic message reaches the client.
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON marshals a payload to JSON and writes it with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// prepareStream writes the Server-Sent Events headers.
func prepareStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}

// sendStreamError sends a structured error message over an SSE stream.
func sendStreamError(w http.ResponseWriter, message string) error {
	slog.Warn("Sending stream error to client", "message", message)

	jsonData, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		slog.Error("Failed to marshal stream error payload", "error", err)
		return nil
	}

	// The `event: error` line lets clients listen for errors separately.
	if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write error to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

// writeStreamEvent marshals data and writes it to an SSE stream.
// A returned error means the client has disconnected.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		// The connection is still fine; only this chunk is lost.
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
