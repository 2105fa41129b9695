package service

import (
	"context"
	"fmt"
	"log"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// TranscriptFetcher fetches pre-existing platform transcripts for videos
// hosted externally.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

// ImportPlaylistInput registers externally hosted videos as lessons of a
// module.
type ImportPlaylistInput struct {
	ModuleID  int64
	VideoURLs []string
}

// PlaylistService imports video playlists as lessons. Videos with an
// available platform transcript are indexed for search immediately.
type PlaylistService struct {
	moduleRepo  ModuleRepositoryInterface
	transcripts TranscriptFetcher
	indexing    *IndexingService
	txRunner    TxRunner
}

// NewPlaylistService creates a new PlaylistService instance
func NewPlaylistService(
	moduleRepo ModuleRepositoryInterface,
	transcripts TranscriptFetcher,
	indexing *IndexingService,
	txRunner TxRunner,
) *PlaylistService {
	return &PlaylistService{
		moduleRepo:  moduleRepo,
		transcripts: transcripts,
		indexing:    indexing,
		txRunner:    txRunner,
	}
}

// Import creates one lesson per video URL under the module. A missing
// transcript is not an error; the lesson is still registered and can be
// indexed later through the video pipeline.
func (s *PlaylistService) Import(ctx context.Context, input ImportPlaylistInput) ([]*domain.Lesson, error) {
	if input.ModuleID <= 0 {
		return nil, domain.ErrMissingRequiredField
	}
	if len(input.VideoURLs) == 0 {
		return nil, domain.ErrMissingRequiredField
	}

	if _, err := s.moduleRepo.GetByID(ctx, input.ModuleID); err != nil {
		return nil, err
	}

	created := make([]*domain.Lesson, 0, len(input.VideoURLs))
	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		for i, videoURL := range input.VideoURLs {
			lesson := &domain.Lesson{
				ModuleID: input.ModuleID,
				Title:    fmt.Sprintf("Lesson %d", i+1),
				Position: i + 1,
				VideoURL: videoURL,
			}
			if err := domain.ValidateLesson(lesson); err != nil {
				return err
			}
			if err := repos.Lessons().Create(ctx, lesson); err != nil {
				return err
			}
			created = append(created, lesson)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, lesson := range created {
		transcript, err := s.transcripts.Fetch(ctx, lesson.VideoURL)
		if err != nil {
			if err == domain.ErrTranscriptNotFound {
				continue
			}
			log.Printf("playlist import: lesson %d: transcript fetch failed: %v", lesson.ID, err)
			continue
		}

		insights := &domain.VideoInsights{
			Transcript:   transcript,
			KeyTakeaways: []string{},
			Chapters:     []domain.Chapter{},
		}
		err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			return repos.Lessons().UpdateInsights(ctx, lesson.ID, insights)
		})
		if err != nil {
			log.Printf("playlist import: lesson %d: failed to persist transcript: %v", lesson.ID, err)
			continue
		}

		if err := s.indexing.IndexMaterial(ctx, lesson.ID, transcript); err != nil {
			log.Printf("playlist import: lesson %d: indexing failed: %v", lesson.ID, err)
		}
	}

	return created, nil
}
