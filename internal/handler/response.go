package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// THE ENVELOPE:
// Every API response (except /api/health) has the same shape:
//
//	{"success": true,  "message": "Task created successfully", "data": {...}}
//	{"success": false, "message": "Task not found"}
//
// message and data are omitted when empty, so a list endpoint answers
// {"success": true, "data": [...]}.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/taskboard/internal/apperror"
)

// MsgInvalidBody is returned when a request body isn't valid JSON.
const MsgInvalidBody = "Invalid request body"

// Envelope is the standard response body returned by all API endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and the status code must be set BEFORE the body is written.
// Once Encode calls w.Write(), the headers are sent and later changes are
// silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// the headers are already sent; we can only log it
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400
//	apperror.ErrConflict     → 400 (duplicate registration)
//	apperror.ErrUnauthorized → 401
//	apperror.ErrForbidden    → 403
//	apperror.ErrNotFound     → 404
//	anything else            → 500
//
// RAW 500 MESSAGES:
// An unclassified error is sent with its own text as the message, e.g.
// {"success": false, "message": "sqlstore: listing tasks: database is locked"}.
// Clients of this API rely on that text for diagnostics.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeFailure(w, status, appErr.Message)
		return
	}

	slog.Error("request failed", slog.String("error", err.Error()))
	writeFailure(w, http.StatusInternalServerError, err.Error())
}

// decodeJSON reads the request body into dst.
//
// An empty body decodes as {}: the handler's own validation then reports
// which fields are missing. Anything that isn't a JSON object of the right
// shape is an apperror.ErrValidation carrying MsgInvalidBody.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.ValidationFailed("body", MsgInvalidBody)
	}
	return nil
}

// NotFound answers requests for routes that don't exist.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
}
