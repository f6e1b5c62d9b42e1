package handler

// RESPONSE HELPERS:
// Every handler in this package answers through writeJSON, writeError or
// writeRaw, so the wire format is decided here and nowhere else.
//
// RESPONSE SHAPES:
//
//	{"message": "Food logged successfully", "result": {...}}   success with payload
//	{"result": [...]}                                          plain read
//	{"error": "meal plan not found with id 7"}                 any failure
//
// Failures always carry a single "error" string. Internal details (SQL,
// file paths, upstream bodies) never reach the client; writeError logs
// them and sends the AppError's safe message instead.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/apperror"
)

// maxBodyBytes bounds request bodies. Every body this API accepts is a
// small JSON object.
const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends data as JSON with the given status.
//
// HEADER ORDER MATTERS:
//  1. w.Header().Set(...)    set headers
//  2. w.WriteHeader(status)  sends status and headers
//  3. Encode(data)           sends the body
//
// Headers set after step 2 are silently dropped. If encoding fails the
// status is already on the wire, so the failure can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError is the single place domain errors become HTTP responses.
//
// ERROR MAPPING:
// Services return apperror categories wrapped with context, for example
//
//	fmt.Errorf("service/auth: creating user: %w", apperror.Conflict(...))
//
// apperror.HTTPStatus walks the chain with errors.Is and picks the status;
// apperror.ClientMessage picks the text. A plain error with no category is
// a 500 with a generic message, and only 5xx responses are logged. The
// auth middleware uses the same two functions, so a 401 or 500 looks the
// same whichever layer produced it.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperror.HTTPStatus(err)
	message := apperror.ClientMessage(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.String("error", err.Error()))
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("", "Request body is required")
		}
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}

// message is the {"message": ...} body of simple successes.
type message struct {
	Message string `json:"message"`
}

// result wraps a payload as {"result": ...}, optionally with a message.
type result struct {
	Message string `json:"message,omitempty"`
	Result  any    `json:"result"`
}
