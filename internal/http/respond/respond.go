// Package respond holds the JSON and error helpers shared by the API
// handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps err onto a status code. Store and unknown failures get a
// generic message and are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, apperr.ErrValidation):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		JSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		JSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// BadRequest reports malformed input that never reached a service.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

// ID parses the named chi URL parameter as a UUID.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

// ParseDate reads a YYYY-MM-DD value. Empty input gives the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}

	return t, nil
}

// Date renders t as YYYY-MM-DD.
func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DatePtr renders an optional date, nil stays nil.
func DatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}

	return new(Date(*t))
}
