package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Get("/settings", apiHandler.GetSettingsHandler)
		r.Put("/settings", apiHandler.PutSettingsHandler)

		r.Post("/sessions", apiHandler.CreateSessionHandler)
		r.Get("/sessions", apiHandler.ListSessionsHandler)
		r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
		r.Post("/sessions/{sessionID}/answer", apiHandler.AnswerHandler)
		r.Post("/sessions/{sessionID}/tags", apiHandler.TagsHandler)
		r.Post("/sessions/{sessionID}/like", apiHandler.LikeHandler)
		r.Post("/sessions/{sessionID}/document", apiHandler.DocumentHandler)
		r.Get("/sessions/{sessionID}/export", apiHandler.ExportHandler)
		r.Get("/sessions/{sessionID}/training", apiHandler.TrainingHandler)

		r.Post("/tags/suggest", apiHandler.SuggestTagsHandler)
	})

	return r
}
