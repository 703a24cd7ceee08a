package api

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/api/handler"
	"github.com/ricirt/hubgateway/internal/webhook/middleware"
)

// DefaultMaxUpload bounds a media upload when RouterConfig leaves it unset.
const DefaultMaxUpload = 16 << 20

type RouterConfig struct {
	// PublicDir holds uploaded media and is served under /public/.
	PublicDir string
	MaxUpload int64
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the outbound HTTP
// surface.
func NewRouter(svc handler.Dispatcher, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}

	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(logger))

	mh := handler.NewMessageHandler(svc, cfg.PublicDir, cfg.MaxUpload, logger)
	hh := handler.NewHealthHandler()

	r.Get("/health", hh.Health)

	// Providers fetch outbound media from here.
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(filesOnly{http.Dir(cfg.PublicDir)})))

	r.Route("/api/v1/tenants/{tenantID}", func(r chi.Router) {
		r.Get("/channels", mh.Channels)
		// The upload route sets its own body limit.
		r.Post("/media", mh.SendMedia)
		r.With(chimw.RequestSize(1<<20)).Post("/messages", mh.SendText)
	})

	return r
}

// filesOnly hides directories so the upload dir cannot be listed.
type filesOnly struct{ http.FileSystem }

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
