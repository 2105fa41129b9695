package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/studyhall-ai/studyhall/internal/api"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/pdf"
)

type IndexingService interface {
	IndexMaterial(ctx context.Context, lessonID int64, text string) error
}

// MaterialHandler indexes study material uploaded for a lesson. PDF files
// are converted to text first; plain text is indexed as-is.
type MaterialHandler struct {
	indexing IndexingService
}

func NewMaterialHandler(indexing IndexingService) *MaterialHandler {
	return &MaterialHandler{indexing: indexing}
}

type IndexMaterialRequest struct {
	Content string `json:"content"`
}

type IndexMaterialResponse struct {
	LessonID int64 `json:"lesson_id"`
	Indexed  bool  `json:"indexed"`
}

// Upload accepts either a multipart file upload (field "file") or a JSON
// body with raw content. Indexing is synchronous: when the response
// arrives the material is searchable.
func (h *MaterialHandler) Upload(w http.ResponseWriter, r *http.Request) {
	lessonID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid lesson id")
		return
	}

	text, err := h.extractText(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.indexing.IndexMaterial(r.Context(), lessonID, text); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IndexMaterialResponse{LessonID: lessonID, Indexed: true})
}

func (h *MaterialHandler) extractText(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxVideoUploadMemory); err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid multipart form", err)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "file is required", err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to read file", err)
		}

		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".pdf":
			text, err := pdf.ExtractText(data)
			if err != nil {
				return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to parse PDF", err)
			}
			return text, nil
		case ".txt", ".md":
			return string(data), nil
		default:
			return "", domain.ErrUnsupportedFileType
		}
	}

	var req IndexMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid request body", err)
	}
	return req.Content, nil
}
