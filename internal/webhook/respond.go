package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ricirt/hubgateway/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// mapError writes the response for a rejected delivery and returns the
// rejection reason used for metrics. All status mapping lives here so the
// handlers stay concise.
func mapError(w http.ResponseWriter, err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrSignature):
		respondText(w, http.StatusForbidden, "Invalid signature")
		return "signature"
	case errors.As(err, &tooLarge):
		respondText(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return "too_large"
	case errors.Is(err, domain.ErrValidation):
		respondText(w, http.StatusBadRequest, "Invalid payload")
		return "payload"
	}
	respondText(w, http.StatusInternalServerError, "Internal server error")
	var malformed *errMalformedEntry
	if errors.As(err, &malformed) {
		return "malformed_entry"
	}
	return "internal"
}
