package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// MediaArchive stores lesson videos in durable object storage.
type MediaArchive interface {
	UploadFile(ctx context.Context, key, path, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// PipelineEnqueuer starts a background ingestion run for a lesson.
type PipelineEnqueuer interface {
	Enqueue(lessonID int64, videoPath string)
}

// CreateVideoLessonInput carries an uploaded lesson video.
type CreateVideoLessonInput struct {
	ModuleID    int64
	Title       string
	Difficulty  domain.DifficultyLevel
	Position    int
	Filename    string
	ContentType string
	File        io.Reader
}

// LessonService manages lesson records and their uploaded videos.
type LessonService struct {
	lessons  LessonRepositoryInterface
	modules  ModuleRepositoryInterface
	archive  MediaArchive
	pipeline PipelineEnqueuer
	mediaDir string
}

// NewLessonService creates a new LessonService instance. archive may be nil
// when object storage is not configured.
func NewLessonService(
	lessons LessonRepositoryInterface,
	modules ModuleRepositoryInterface,
	archive MediaArchive,
	pipeline PipelineEnqueuer,
	mediaDir string,
) *LessonService {
	return &LessonService{
		lessons:  lessons,
		modules:  modules,
		archive:  archive,
		pipeline: pipeline,
		mediaDir: mediaDir,
	}
}

// CreateVideoLesson registers the lesson, saves the uploaded video to local
// media storage and enqueues the ingestion pipeline. The call returns as
// soon as the pipeline is enqueued; insights appear on the lesson later.
func (s *LessonService) CreateVideoLesson(ctx context.Context, input CreateVideoLessonInput) (*domain.Lesson, error) {
	lesson := &domain.Lesson{
		ModuleID:   input.ModuleID,
		Title:      input.Title,
		Difficulty: input.Difficulty,
		Position:   input.Position,
	}
	if err := domain.ValidateLesson(lesson); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid lesson", err)
	}
	if input.File == nil || input.Filename == "" {
		return nil, domain.ErrMissingRequiredField
	}

	if _, err := s.modules.GetByID(ctx, input.ModuleID); err != nil {
		return nil, err
	}

	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to create lesson", err)
	}

	videoPath, err := s.saveVideo(lesson.ID, input.Filename, input.File)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to save video", err)
	}

	// Archive failure is logged, not fatal: the local copy is enough for
	// the pipeline to run.
	if s.archive != nil {
		key := fmt.Sprintf("videos/%d/%s", lesson.ID, filepath.Base(input.Filename))
		if err := s.archive.UploadFile(ctx, key, videoPath, input.ContentType); err != nil {
			log.Printf("lesson %d: failed to archive video: %v", lesson.ID, err)
		} else if err := s.lessons.SetStorageKey(ctx, lesson.ID, key); err != nil {
			log.Printf("lesson %d: failed to record storage key: %v", lesson.ID, err)
		} else {
			lesson.StorageKey = key
		}
	}

	s.pipeline.Enqueue(lesson.ID, videoPath)
	return lesson, nil
}

// Get returns a lesson with its generated insights, if any.
func (s *LessonService) Get(ctx context.Context, id int64) (*domain.Lesson, error) {
	return s.lessons.GetByID(ctx, id)
}

// VideoDownloadURL returns a presigned URL for the archived lesson video.
func (s *LessonService) VideoDownloadURL(ctx context.Context, id int64) (string, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if s.archive == nil || lesson.StorageKey == "" {
		return "", domain.NewDomainError(domain.ErrCodeNotFound, "lesson has no archived video")
	}

	url, err := s.archive.GenerateDownloadURL(ctx, lesson.StorageKey)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to generate download URL", err)
	}
	return url, nil
}

func (s *LessonService) saveVideo(lessonID int64, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.mediaDir, fmt.Sprintf("%d_%s", lessonID, filepath.Base(filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
