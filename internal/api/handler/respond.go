package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ricirt/hubgateway/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, domain.Fail[any](err))
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedContent),
		errors.Is(err, domain.ErrChannelNotSupported):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domain.ErrTokenNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, err)
	case errors.Is(err, domain.ErrProvider),
		errors.Is(err, domain.ErrTransport),
		errors.Is(err, domain.ErrRequest):
		respondError(w, http.StatusBadGateway, err)
	default:
		respondJSON(w, http.StatusInternalServerError, &domain.APIResponse[any]{
			Error: "internal server error",
			Code:  domain.ErrorCode(err),
		})
	}
}
