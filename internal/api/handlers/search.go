package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/service"
)

type SearchService interface {
	Ask(ctx context.Context, query string, limit int) ([]service.Answer, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
	// Limit distinguishes "absent" (use the default) from an explicit
	// zero, which is rejected.
	Limit *int `json:"limit,omitempty"`
}

type AnswerResponse struct {
	Content  string `json:"content"`
	LessonID int64  `json:"lesson_id"`
}

type AskResponse struct {
	Answers []AnswerResponse `json:"answers"`
}

func (h *SearchHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	limit := service.DefaultSearchLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	answers, err := h.svc.Ask(r.Context(), req.Question, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := AskResponse{Answers: make([]AnswerResponse, 0, len(answers))}
	for _, a := range answers {
		resp.Answers = append(resp.Answers, AnswerResponse{Content: a.Content, LessonID: a.LessonID})
	}

	api.Success(w, http.StatusOK, resp)
}
