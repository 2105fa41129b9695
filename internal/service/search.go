package service

import (
	"context"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/telemetry"
)

// DefaultSearchLimit is the number of chunks returned when the caller does
// not specify a limit.
const DefaultSearchLimit = 5

// Embedder defines the embedding provider interface. Document and query
// modes may be backed by different model configurations but share one
// coordinate space.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ChunkMatch pairs a stored chunk with its cosine distance to the query
// vector. Smaller distance means more similar.
type ChunkMatch struct {
	Chunk    domain.LessonChunk
	Distance float64
}

// ChunkSearcher defines the read side of the vector store adapter.
type ChunkSearcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]*ChunkMatch, error)
}

// Answer is one ranked retrieval result, projected for collaborators. The
// distance score is internal and deliberately dropped.
type Answer struct {
	Content  string
	LessonID int64
}

// SearchService answers natural-language questions against indexed lesson
// material.
type SearchService struct {
	embedder Embedder
	searcher ChunkSearcher
}

// NewSearchService creates a new SearchService instance
func NewSearchService(embedder Embedder, searcher ChunkSearcher) *SearchService {
	return &SearchService{embedder: embedder, searcher: searcher}
}

// Ask embeds the query, runs a nearest-neighbor search and returns chunks
// ranked most-similar first. An empty index yields an empty slice, not an
// error. Validation happens before any provider call.
func (s *SearchService) Ask(ctx context.Context, query string, limit int) ([]Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Ask", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		return nil, domain.ErrInvalidSearchLimit
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "failed to embed query", err)
	}

	matches, err := s.searcher.Search(ctx, vector, limit)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "similarity search failed", err)
	}

	answers := make([]Answer, 0, len(matches))
	for _, m := range matches {
		answers = append(answers, Answer{
			Content:  m.Chunk.Content,
			LessonID: m.Chunk.LessonID,
		})
	}

	return answers, nil
}
