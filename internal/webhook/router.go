package webhook

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ricirt/hubgateway/internal/webhook/middleware"
)

const maxBodyBytes = 1 << 20

func (l *Listener) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(maxBodyBytes))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(l.logger))

	r.Get("/health", l.health)
	if l.metrics != nil {
		r.Handle("/metrics", l.metrics)
	}

	r.Get(l.cfg.Path, l.verify)
	r.Post(l.cfg.Path, l.deliver)

	return r
}
