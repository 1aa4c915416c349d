package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/mock-interviewer/internal/interview"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps orchestrator error kinds to HTTP statuses.
func statusFor(err error) int {
	switch interview.KindOf(err) {
	case interview.KindValidation:
		return http.StatusBadRequest
	case interview.KindAdapter:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeInterviewError(w http.ResponseWriter, r *http.Request, err error) {
	h.writeError(w, r, statusFor(err), err)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log := h.logger.With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Warn("request rejected")
	}

	writeJSON(w, status, map[string]any{
		"error":  err.Error(),
		"status": "error",
	})
}
