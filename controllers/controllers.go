package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"field_mates_server/identity"
	"field_mates_server/logging"
	"field_mates_server/services"
)

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to Field Mates"})
}

// WriteJSONResponse writes v as the JSON body of a response with the given
// status.
func WriteJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// StatusFor maps an error from the services to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotSignedIn), errors.Is(err, identity.ErrNoToken), errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, services.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrTransport):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError logs err and writes it as a JSON error response. Server-side
// failures are logged at Error level, client mistakes at Debug.
func WriteError(w http.ResponseWriter, log logging.Logger, err error) {
	status := StatusFor(err)
	if status >= 500 {
		logging.OrNoOp(log).Errorf("request failed: %v", err)
	} else {
		logging.OrNoOp(log).Debugf("request rejected: %v", err)
	}
	WriteJSONResponse(w, status, ErrorResponse{Error: err.Error(), Status: status})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", services.ErrInvalidInput, err)
	}
	return nil
}
