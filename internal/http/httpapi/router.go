package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cartographix/internal/http/handlers"
	"cartographix/internal/middleware"
)

// NewRouter wires every API route behind the shared middleware chain.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Log),
		middleware.CORS(app.Config.AllowedOrigins),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Get("/themes", app.Themes)
		r.Get("/geocode", app.Geocode)

		r.Post("/generate", app.Generate)
		r.Get("/status/{job_id}", app.Status)

		r.Get("/poster/{job_id}", app.Poster)
		r.Post("/poster/{job_id}/share", app.Share)
		r.Get("/share/{share_id}", app.SharedPoster)
		r.Get("/gallery", app.Gallery)
		r.Get("/gallery/archive", app.GalleryArchive)
	})

	return r
}
