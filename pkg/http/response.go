package http

import (
	"encoding/json"
	"net/http"

	apperrors "ticketing/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as an ErrorResponse. Errors that are not an
// AppError are reported as a generic 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// WriteErrorMessage renders err as a bare {"message"} body with the
// AppError status, the shape the read API answers errors with.
func WriteErrorMessage(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteMessage(w, appErr.StatusCode(), appErr.Message)
}

func WriteMessage(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, MessageResponse{Message: message})
}

func WriteAccepted(w http.ResponseWriter, message string) error {
	return WriteMessage(w, http.StatusAccepted, message)
}
