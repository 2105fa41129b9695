package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/api/handlers"
	"github.com/studyhall-ai/studyhall/internal/api/middleware"
)

type RouterConfig struct {
	LessonHandler       *handlers.LessonHandler
	MaterialHandler     *handlers.MaterialHandler
	SearchHandler       *handlers.SearchHandler
	LearningPathHandler *handlers.LearningPathHandler
	PlaylistHandler     *handlers.PlaylistHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024
	const maxUploadBytes int64 = 512 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Upload routes carry video and document payloads and get a larger
	// body budget than the JSON API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodyBytes(maxUploadBytes))

		r.Post("/modules/{moduleID}/lessons", cfg.LessonHandler.CreateVideoLesson)
		r.Post("/lessons/{id}/material", cfg.MaterialHandler.Upload)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodyBytes(maxBodyBytes))

		r.Post("/modules/{moduleID}/playlist", cfg.PlaylistHandler.Import)
		r.Get("/lessons/{id}", cfg.LessonHandler.Get)
		r.Get("/lessons/{id}/video", cfg.LessonHandler.VideoURL)
		r.Post("/ask", cfg.SearchHandler.Ask)
		r.Post("/learning-path", cfg.LearningPathHandler.Generate)
	})

	return r
}
