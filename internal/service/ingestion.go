package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// AudioExtractor extracts an audio track from a video file.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

// InsightGenerator produces structured insights from an audio track.
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, audioPath string) (*domain.VideoInsights, error)
}

// IngestionService runs the multi-stage video processing pipeline for one
// lesson: media extraction, insight generation, insight persistence and
// chunk indexing, then cleanup of transient artifacts. Runs for different
// lessons are independent; a failure in one never affects another.
type IngestionService struct {
	extractor    AudioExtractor
	insights     InsightGenerator
	indexing     *IndexingService
	txRunner     TxRunner
	stageTimeout time.Duration
}

// NewIngestionService creates a new IngestionService instance
func NewIngestionService(
	extractor AudioExtractor,
	insights InsightGenerator,
	indexing *IndexingService,
	txRunner TxRunner,
	stageTimeout time.Duration,
) *IngestionService {
	if stageTimeout <= 0 {
		stageTimeout = 2 * time.Minute
	}
	return &IngestionService{
		extractor:    extractor,
		insights:     insights,
		indexing:     indexing,
		txRunner:     txRunner,
		stageTimeout: stageTimeout,
	}
}

// Run executes the pipeline stages strictly in order for one lesson. The
// returned error is for the pipeline boundary (the dispatcher) to log; it
// must never reach the request that triggered ingestion.
func (s *IngestionService) Run(ctx context.Context, lessonID int64, videoPath string) error {
	ctx, span := telemetry.StartSpan(ctx, "IngestionService.Run", telemetry.SpanAttributes{
		LessonID:  lessonID,
		Operation: "ingest_video",
	})
	defer span.End()

	// Stage 1: media extraction. Failure aborts before anything is
	// written; the lesson keeps its pre-ingestion state.
	audioPath, err := s.extractAudio(ctx, videoPath)
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("stage audio_extraction failed for lesson %d: %w", lessonID, err)
	}

	// Transient audio is removed on every exit path from here on.
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			log.Printf("ingestion: lesson %d: failed to remove audio artifact %s: %v", lessonID, audioPath, err)
		}
	}()

	// Stage 2: insight generation. Degrades to a placeholder on provider
	// failure; losing the lesson's base content is worse than a missing
	// transcript.
	insights := s.generateInsights(ctx, lessonID, audioPath)

	// Stages 3+4: persist insights and index the transcript inside one
	// fresh transaction, so they succeed or fail together.
	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Lessons().UpdateInsights(ctx, lessonID, insights); err != nil {
			return fmt.Errorf("persist insights: %w", err)
		}

		if insights.Degraded || insights.Transcript == "" {
			return nil
		}

		chunks, err := Chunk(insights.Transcript, s.indexing.chunkCfg)
		if err != nil {
			return fmt.Errorf("chunk transcript: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}

		return s.indexing.indexChunks(ctx, repos.Chunks(), lessonID, chunks)
	})
	if err != nil {
		span.SetError(err)
		return fmt.Errorf("stage persistence failed for lesson %d: %w", lessonID, err)
	}

	return nil
}

func (s *IngestionService) extractAudio(ctx context.Context, videoPath string) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()
	return s.extractor.ExtractAudio(stageCtx, videoPath)
}

func (s *IngestionService) generateInsights(ctx context.Context, lessonID int64, audioPath string) *domain.VideoInsights {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	insights, err := s.insights.GenerateInsights(stageCtx, audioPath)
	if err != nil {
		log.Printf("ingestion: lesson %d: stage insight_generation degraded: %v", lessonID, err)
		return domain.DegradedInsights()
	}
	return insights
}
