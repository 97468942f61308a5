package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tabletap/pkg/authtoken"
	"tabletap/report-svc/internal/domain"
	"tabletap/report-svc/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Handler struct {
	Reports service.ReportServiceInterface
	Tokens  *authtoken.Maker
	Logger  zerolog.Logger
}

func NewHandler(reports service.ReportServiceInterface, tokens *authtoken.Maker, logger zerolog.Logger) *Handler {
	return &Handler{Reports: reports, Tokens: tokens, Logger: logger}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/restaurants/{id}/sales", h.getSales).Methods("GET")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "report-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getSales(w http.ResponseWriter, r *http.Request) {
	var claims *authtoken.Claims
	if raw := authtoken.FromHeader(r.Header.Get("Authorization")); raw != "" {
		verified, err := h.Tokens.Verify(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		claims = verified
	}

	period := domain.Range(r.URL.Query().Get("range"))
	if period == "" {
		period = domain.RangeDaily
	}

	report, err := h.Reports.Sales(r.Context(), claims, mux.Vars(r)["id"], period)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, domain.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "permission denied"})
	case errors.Is(err, domain.ErrInvalidRange):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.Logger.Error().Err(err).Str("restaurant_id", mux.Vars(r)["id"]).Msg("sales report failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
