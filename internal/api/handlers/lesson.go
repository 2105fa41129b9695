package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

// maxVideoUploadMemory caps in-memory parsing of multipart uploads; larger
// parts spill to temp files.
const maxVideoUploadMemory = 32 << 20

type LessonService interface {
	CreateVideoLesson(ctx context.Context, input service.CreateVideoLessonInput) (*domain.Lesson, error)
	Get(ctx context.Context, id int64) (*domain.Lesson, error)
	VideoDownloadURL(ctx context.Context, id int64) (string, error)
}

type LessonHandler struct {
	svc LessonService
}

func NewLessonHandler(svc LessonService) *LessonHandler {
	return &LessonHandler{svc: svc}
}

type ChapterResponse struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

type LessonResponse struct {
	ID           int64             `json:"id"`
	ModuleID     int64             `json:"module_id"`
	Title        string            `json:"title"`
	Content      string            `json:"content,omitempty"`
	Difficulty   string            `json:"difficulty,omitempty"`
	Position     int               `json:"position"`
	VideoURL     string            `json:"video_url,omitempty"`
	Transcript   string            `json:"transcript,omitempty"`
	KeyTakeaways []string          `json:"key_takeaways"`
	Chapters     []ChapterResponse `json:"chapters"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

func lessonToResponse(l *domain.Lesson) *LessonResponse {
	takeaways := l.KeyTakeaways
	if takeaways == nil {
		takeaways = []string{}
	}
	chapters := make([]ChapterResponse, 0, len(l.Chapters))
	for _, c := range l.Chapters {
		chapters = append(chapters, ChapterResponse{Timestamp: c.Timestamp, Title: c.Title})
	}
	return &LessonResponse{
		ID:           l.ID,
		ModuleID:     l.ModuleID,
		Title:        l.Title,
		Content:      l.Content,
		Difficulty:   string(l.Difficulty),
		Position:     l.Position,
		VideoURL:     l.VideoURL,
		Transcript:   l.Transcript,
		KeyTakeaways: takeaways,
		Chapters:     chapters,
		CreatedAt:    l.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    l.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// CreateVideoLesson accepts a multipart video upload and starts background
// ingestion. It responds 202 before insights exist.
func (h *LessonHandler) CreateVideoLesson(w http.ResponseWriter, r *http.Request) {
	moduleID, err := parseID(chi.URLParam(r, "moduleID"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid module id")
		return
	}

	if err := r.ParseMultipartForm(maxVideoUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	position := 0
	if v := r.FormValue("position"); v != "" {
		position, err = strconv.Atoi(v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid position")
			return
		}
	}

	input := service.CreateVideoLessonInput{
		ModuleID:    moduleID,
		Title:       title,
		Difficulty:  domain.DifficultyLevel(r.FormValue("difficulty")),
		Position:    position,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		File:        file,
	}

	lesson, err := h.svc.CreateVideoLesson(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, lessonToResponse(lesson))
}

func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	lesson, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, lessonToResponse(lesson))
}

type VideoURLResponse struct {
	URL string `json:"url"`
}

func (h *LessonHandler) VideoURL(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	url, err := h.svc.VideoDownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, VideoURLResponse{URL: url})
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
