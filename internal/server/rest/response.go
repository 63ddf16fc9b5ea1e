package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/petnest/internal/common"
)

const (
	msgBackendError = "Database error"
	msgServerError  = "Server error"
)

// statusResponse is the body of every reply that carries only an outcome.
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, statusResponse{Success: false, Message: message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: message})
}

// statusFor maps a service error to a status code and a client-safe message.
// Anything that is not a UserError is a backend failure.
func statusFor(err error) (int, string, bool) {
	var ue *common.UserError
	if !errors.As(err, &ue) {
		return http.StatusInternalServerError, msgBackendError, false
	}
	switch {
	case errors.Is(ue.Kind, common.ErrValidation):
		return http.StatusBadRequest, ue.Message, true
	case errors.Is(ue.Kind, common.ErrUnauthenticated), errors.Is(ue.Kind, common.ErrorUnauthorized):
		return http.StatusUnauthorized, ue.Message, true
	case errors.Is(ue.Kind, common.ErrorNotFound):
		return http.StatusNotFound, ue.Message, true
	case errors.Is(ue.Kind, common.ErrConflict):
		return http.StatusConflict, ue.Message, true
	default:
		return http.StatusInternalServerError, ue.Message, true
	}
}

// fail writes err to the client, logging backend failures with the operation name.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg, known := statusFor(err)
	if !known {
		h.log.Error(r.Context(), "request failed", "operation", op, "error", err)
	}
	writeError(w, status, msg)
}
