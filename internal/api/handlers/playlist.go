package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type PlaylistService interface {
	Import(ctx context.Context, input service.ImportPlaylistInput) ([]*domain.Lesson, error)
}

type PlaylistHandler struct {
	svc PlaylistService
}

func NewPlaylistHandler(svc PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{svc: svc}
}

type ImportPlaylistRequest struct {
	VideoURLs []string `json:"video_urls"`
}

type ImportPlaylistResponse struct {
	Lessons []*LessonResponse `json:"lessons"`
}

func (h *PlaylistHandler) Import(w http.ResponseWriter, r *http.Request) {
	moduleID, err := parseID(chi.URLParam(r, "moduleID"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid module id")
		return
	}

	var req ImportPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lessons, err := h.svc.Import(r.Context(), service.ImportPlaylistInput{
		ModuleID:  moduleID,
		VideoURLs: req.VideoURLs,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ImportPlaylistResponse{Lessons: make([]*LessonResponse, 0, len(lessons))}
	for _, l := range lessons {
		resp.Lessons = append(resp.Lessons, lessonToResponse(l))
	}

	api.Success(w, http.StatusCreated, resp)
}
