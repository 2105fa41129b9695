package service

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearchService_Ask_Success(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	mockChunks := new(MockChunkRepo)
	svc := NewSearchService(mockEmbedder, mockChunks)

	ctx := context.Background()
	queryVector := []float32{0.9, 0.1}

	mockEmbedder.On("EmbedQuery", mock.Anything, "what is a phrasal verb?").Return(queryVector, nil)
	mockChunks.On("Search", mock.Anything, queryVector, 5).Return([]*ChunkMatch{
		{Chunk: domain.LessonChunk{ID: 1, LessonID: 10, Content: "A phrasal verb combines a verb and a particle."}, Distance: 0.12},
		{Chunk: domain.LessonChunk{ID: 2, LessonID: 11, Content: "Particles change a verb's meaning."}, Distance: 0.34},
	}, nil)

	answers, err := svc.Ask(ctx, "what is a phrasal verb?", 5)

	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "A phrasal verb combines a verb and a particle.", answers[0].Content)
	assert.Equal(t, int64(10), answers[0].LessonID)
	assert.Equal(t, int64(11), answers[1].LessonID)
	mockEmbedder.AssertExpectations(t)
	mockChunks.AssertExpectations(t)
}

func TestSearchService_Ask_NonPositiveLimit(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	mockChunks := new(MockChunkRepo)
	svc := NewSearchService(mockEmbedder, mockChunks)

	answers, err := svc.Ask(context.Background(), "anything", 0)

	assert.Nil(t, answers)
	assert.Equal(t, domain.ErrInvalidSearchLimit, err)
	// Validation rejects before any provider call is made.
	mockEmbedder.AssertNotCalled(t, "EmbedQuery")
	mockChunks.AssertNotCalled(t, "Search")
}

func TestSearchService_Ask_EmptyQuery(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	svc := NewSearchService(mockEmbedder, new(MockChunkRepo))

	_, err := svc.Ask(context.Background(), "", 5)

	assert.Equal(t, domain.ErrEmptyQuery, err)
	mockEmbedder.AssertNotCalled(t, "EmbedQuery")
}

func TestSearchService_Ask_EmptyIndex(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	mockChunks := new(MockChunkRepo)
	svc := NewSearchService(mockEmbedder, mockChunks)

	ctx := context.Background()
	mockEmbedder.On("EmbedQuery", mock.Anything, "anything at all").Return([]float32{0.5, 0.5}, nil)
	mockChunks.On("Search", mock.Anything, mock.Anything, 3).Return([]*ChunkMatch{}, nil)

	answers, err := svc.Ask(ctx, "anything at all", 3)

	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.NotNil(t, answers)
}

func TestSearchService_Ask_EmbedderFailure(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	mockChunks := new(MockChunkRepo)
	svc := NewSearchService(mockEmbedder, mockChunks)

	ctx := context.Background()
	mockEmbedder.On("EmbedQuery", mock.Anything, "query").Return(nil, errBoom)

	_, err := svc.Ask(ctx, "query", 5)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeProvider, domainErr.Code)
	mockChunks.AssertNotCalled(t, "Search")
}

func TestSearchService_Ask_StorageFailure(t *testing.T) {
	mockEmbedder := new(MockEmbedder)
	mockChunks := new(MockChunkRepo)
	svc := NewSearchService(mockEmbedder, mockChunks)

	ctx := context.Background()
	mockEmbedder.On("EmbedQuery", mock.Anything, "query").Return([]float32{1, 0}, nil)
	mockChunks.On("Search", mock.Anything, mock.Anything, 5).Return(nil, errBoom)

	_, err := svc.Ask(ctx, "query", 5)

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeStorage, domainErr.Code)
}

// memorySearcher ranks stored chunks by cosine distance, mirroring the
// vector store's semantics for end-to-end ranking checks.
type memorySearcher struct {
	chunks []domain.LessonChunk
}

func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func (s *memorySearcher) Search(ctx context.Context, vector []float32, limit int) ([]*ChunkMatch, error) {
	matches := make([]*ChunkMatch, 0, len(s.chunks))
	for _, c := range s.chunks {
		matches = append(matches, &ChunkMatch{Chunk: c, Distance: cosineDistance(vector, c.Embedding)})
	}
	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func TestSearchService_Ask_RanksByCosineDistance(t *testing.T) {
	searcher := &memorySearcher{chunks: []domain.LessonChunk{
		{ID: 1, LessonID: 1, Content: "chunk one", Embedding: []float32{1, 0}},
		{ID: 2, LessonID: 1, Content: "chunk two", Embedding: []float32{0, 1}},
	}}

	mockEmbedder := new(MockEmbedder)
	svc := NewSearchService(mockEmbedder, searcher)

	ctx := context.Background()
	mockEmbedder.On("EmbedQuery", mock.Anything, "closest to the first vector").Return([]float32{0.9, 0.1}, nil)

	answers, err := svc.Ask(ctx, "closest to the first vector", 1)

	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "chunk one", answers[0].Content)
}

func TestMemorySearcher_NonDecreasingDistances(t *testing.T) {
	searcher := &memorySearcher{chunks: []domain.LessonChunk{
		{ID: 1, Embedding: []float32{0, 1}},
		{ID: 2, Embedding: []float32{1, 0}},
		{ID: 3, Embedding: []float32{0.7, 0.7}},
	}}

	matches, err := searcher.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].Distance, matches[i-1].Distance)
	}
	assert.Equal(t, int64(2), matches[0].Chunk.ID)
}
