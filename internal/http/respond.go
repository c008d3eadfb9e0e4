package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	appLog "fintrack/internal/log"
	"fintrack/internal/store"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type messageResponse struct {
	Message string `json:"message"`
}

var errBadRequest = errors.New("malformed request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeError maps domain errors to statuses. Unknown errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_error", verr.Error())
	case errors.Is(err, errBadRequest), errors.Is(err, auth.ErrInvalidSignup):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, store.ErrDuplicate):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		appLog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			appLog.FieldPath, r.URL.Path,
			appLog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// decodeJSON reads one JSON value from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
