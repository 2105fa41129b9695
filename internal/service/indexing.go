package service

import (
	"context"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// LessonRepositoryInterface defines the repository interface for lesson
// persistence.
type LessonRepositoryInterface interface {
	Create(ctx context.Context, l *domain.Lesson) error
	GetByID(ctx context.Context, id int64) (*domain.Lesson, error)
	UpdateInsights(ctx context.Context, id int64, insights *domain.VideoInsights) error
	SetStorageKey(ctx context.Context, id int64, key string) error
	ListByModule(ctx context.Context, moduleID int64) ([]*domain.Lesson, error)
	ListByModuleAndDifficulty(ctx context.Context, moduleID int64, difficulty domain.DifficultyLevel) ([]*domain.Lesson, error)
}

// ChunkRepositoryInterface defines the write side of the vector store
// adapter. Insert is append-only; re-indexing replaces a lesson's chunk
// set via DeleteByLesson followed by fresh inserts.
type ChunkRepositoryInterface interface {
	Insert(ctx context.Context, chunk *domain.LessonChunk) error
	DeleteByLesson(ctx context.Context, lessonID int64) error
}

// IndexingService converts lesson material into stored chunk embeddings.
// This is the synchronous direct-upload path; the video pipeline reuses
// indexChunks within its own transaction.
type IndexingService struct {
	embedder Embedder
	txRunner TxRunner
	chunkCfg ChunkConfig
}

// NewIndexingService creates a new IndexingService instance
func NewIndexingService(embedder Embedder, txRunner TxRunner, chunkCfg ChunkConfig) *IndexingService {
	if chunkCfg.Size <= 0 {
		chunkCfg = DefaultChunkConfig()
	}
	return &IndexingService{
		embedder: embedder,
		txRunner: txRunner,
		chunkCfg: chunkCfg,
	}
}

// IndexMaterial chunks the given material, embeds every chunk in document
// mode and stores the resulting vectors for the lesson. Prior chunks for
// the lesson are replaced in the same transaction. An embedding failure
// aborts the whole operation; nothing is partially indexed.
func (s *IndexingService) IndexMaterial(ctx context.Context, lessonID int64, text string) error {
	ctx, span := telemetry.StartSpan(ctx, "IndexingService.IndexMaterial", telemetry.SpanAttributes{
		LessonID:  lessonID,
		Operation: "index_material",
	})
	defer span.End()

	if lessonID <= 0 {
		return domain.ErrLessonNotFound
	}

	chunks, err := Chunk(text, s.chunkCfg)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if _, err := repos.Lessons().GetByID(ctx, lessonID); err != nil {
			return err
		}
		return s.indexChunks(ctx, repos.Chunks(), lessonID, chunks)
	})
	if err != nil {
		span.SetError(err)
	}
	return err
}

// indexChunks replaces the lesson's chunk set with embeddings for the
// given segments, inside the caller's transaction scope.
func (s *IndexingService) indexChunks(ctx context.Context, repo ChunkRepositoryInterface, lessonID int64, chunks []string) error {
	if err := repo.DeleteByLesson(ctx, lessonID); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to clear prior chunks", err)
	}

	createdAt := time.Now().UTC()
	for _, content := range chunks {
		embedding, err := s.embedder.EmbedDocument(ctx, content)
		if err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "failed to embed chunk", err)
		}

		chunk := &domain.LessonChunk{
			LessonID:  lessonID,
			Content:   content,
			Embedding: embedding,
			CreatedAt: createdAt,
		}
		if err := domain.ValidateLessonChunk(chunk, s.embedder.Dimensions()); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "invalid chunk produced", err)
		}

		if err := repo.Insert(ctx, chunk); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to store chunk", err)
		}
	}

	return nil
}
