package routers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Maheen0312/realtime-code-collab/internal/api"
	"github.com/Maheen0312/realtime-code-collab/internal/metrics"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		metrics.Middleware("collab"),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(10 * time.Second)).Get("/check-room/{roomId}", h.CheckRoom)
		r.With(middleware.Timeout(10 * time.Second)).Post("/room/save", h.SaveRoom)
		r.With(middleware.Timeout(10 * time.Second)).Get("/room/load/{roomId}", h.LoadRoom)
		r.With(middleware.Timeout(20 * time.Second)).Post("/assistant", h.Assistant)
	})

	r.Get("/ws", h.CollabWS)

	return r
}
