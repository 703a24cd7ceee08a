package webhook

import (
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/webhook/middleware"
)

// verify answers the provider subscription handshake
// (GET ?hub.mode&hub.verify_token&hub.challenge).
func (l *Listener) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, token, challenge := q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge")

	if mode == "" || token == "" || challenge == "" {
		l.reject("verification")
		respondText(w, http.StatusBadRequest, "Missing parameters")
		return
	}
	if l.cfg.VerifyToken == "" || token != l.cfg.VerifyToken {
		l.logger.Warn("webhook verification failed")
		l.reject("verification")
		respondText(w, http.StatusForbidden, "Verification failed")
		return
	}

	l.logger.Info("webhook verified")
	respondText(w, http.StatusOK, challenge)
}

// deliver verifies, normalizes and dispatches one provider delivery.
// Handlers run synchronously in entry order; none runs unless the whole
// delivery normalizes.
func (l *Listener) deliver(w http.ResponseWriter, r *http.Request) {
	log := l.logger.With(zap.String("correlation_id", middleware.CorrelationIDFrom(r.Context())))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warn("read webhook body", zap.Error(err))
		l.reject(mapError(w, err))
		return
	}

	if sig := r.Header.Get(SignatureHeader); sig != "" && l.cfg.VerifyToken != "" {
		if !validSignature(body, l.cfg.VerifyToken, sig) {
			log.Warn("invalid webhook signature")
			l.reject(mapError(w, domain.NewError("", "webhook", domain.ErrSignature, "signature mismatch")))
			return
		}
	}

	events, err := normalize(body, l.now)
	if err != nil {
		log.Warn("invalid webhook payload", zap.Error(err))
		l.reject(mapError(w, err))
		return
	}

	for _, ev := range events {
		if l.hooks.OnEvent != nil {
			l.hooks.OnEvent(ev)
		}
		h := l.handlerFor(ev.Event)
		if h == nil {
			log.Debug("no handler registered, event dropped",
				zap.String("event", string(ev.Event)),
				zap.String("channel", string(ev.Channel)),
			)
			continue
		}
		if err := h(r.Context(), ev); err != nil {
			log.Error("webhook handler failed",
				zap.String("event", string(ev.Event)),
				zap.String("channel", string(ev.Channel)),
				zap.Error(err),
			)
			l.reject("handler")
			respondText(w, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	respondText(w, http.StatusOK, "OK")
}

func (l *Listener) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": l.now().UTC().Format(time.RFC3339),
	})
}

func (l *Listener) handlerFor(kind domain.EventKind) EventHandler {
	switch kind {
	case domain.EventMessage:
		return l.cfg.OnMessage
	case domain.EventMessageStatus:
		return l.cfg.OnMessageStatus
	}
	return nil
}

func (l *Listener) reject(reason string) {
	if l.hooks.OnRejected != nil {
		l.hooks.OnRejected(reason)
	}
}
