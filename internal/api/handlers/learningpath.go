package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type AdaptiveService interface {
	GeneratePath(ctx context.Context, moduleID int64, score float64) (*service.LearningPath, error)
}

type LearningPathHandler struct {
	svc AdaptiveService
}

func NewLearningPathHandler(svc AdaptiveService) *LearningPathHandler {
	return &LearningPathHandler{svc: svc}
}

type LearningPathRequest struct {
	ModuleID int64   `json:"module_id"`
	Score    float64 `json:"score"`
}

type LearningPathResponse struct {
	Message string            `json:"message"`
	Lessons []*LessonResponse `json:"lessons"`
}

func (h *LearningPathHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req LearningPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModuleID <= 0 {
		api.Error(w, http.StatusBadRequest, "module_id is required")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		api.Error(w, http.StatusBadRequest, "score must be between 0 and 100")
		return
	}

	path, err := h.svc.GeneratePath(r.Context(), req.ModuleID, req.Score)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := LearningPathResponse{
		Message: path.Message,
		Lessons: make([]*LessonResponse, 0, len(path.Lessons)),
	}
	for _, l := range path.Lessons {
		resp.Lessons = append(resp.Lessons, lessonToResponse(l))
	}

	api.Success(w, http.StatusOK, resp)
}
