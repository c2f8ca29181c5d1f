package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	Logger         logger.Logger
}

// NewRouter mounts the quiz endpoints at the root and again under /api.
func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(accessLog(logger.Ensure(opts.Logger)))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: !allowsAny(origins),
		MaxAge:           300,
	}))

	mount := func(r chi.Router) {
		r.Post("/generate", h.Generate)
		r.Get("/history", h.ListHistory)
		r.Get("/history/{id}", h.GetHistory)
		r.Delete("/history/{id}", h.DeleteHistory)
		r.Get("/health", h.Health)
	}
	r.Group(mount)
	r.Route("/api", mount)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
