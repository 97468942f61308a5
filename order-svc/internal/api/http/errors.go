package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tabletap/order-svc/internal/domain"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error                string `json:"error"`
	RequiresConfirmation bool   `json:"requires_confirmation,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain sentinels to status codes. Internal failures are logged
// with their detail and answered with a generic message.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, domain.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "permission denied"})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalidArgumentMessage(err)})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "invalid or expired order"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrCartConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "cart contains items from another restaurant", RequiresConfirmation: true})
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "order already processed"})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: strings.TrimPrefix(err.Error(), domain.ErrConflict.Error()+": ")})
	default:
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func invalidArgumentMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, domain.ErrInvalidArgument.Error()+": "); i >= 0 {
		return msg[i+len(domain.ErrInvalidArgument.Error())+2:]
	}
	return "invalid request"
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
