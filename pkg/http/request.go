package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "ticketing/pkg/errors"
)

// DecodeJSON reads a single JSON object from the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperrors.PayloadTooLarge(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is empty.")
		default:
			return apperrors.InvalidInput("Request body is not valid JSON.").WithDetails(map[string]any{
				"reason": err.Error(),
			})
		}
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must contain a single JSON object.")
	}
	return nil
}
