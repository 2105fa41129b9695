package service

import (
	"context"
	"errors"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockEmbedder mocks the embedding provider
type MockEmbedder struct {
	mock.Mock
	dims int
}

func (m *MockEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 768
}

// MockLessonRepo mocks the lesson repository
type MockLessonRepo struct {
	mock.Mock
}

func (m *MockLessonRepo) Create(ctx context.Context, l *domain.Lesson) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLessonRepo) GetByID(ctx context.Context, id int64) (*domain.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lesson), args.Error(1)
}

func (m *MockLessonRepo) UpdateInsights(ctx context.Context, id int64, insights *domain.VideoInsights) error {
	args := m.Called(ctx, id, insights)
	return args.Error(0)
}

func (m *MockLessonRepo) SetStorageKey(ctx context.Context, id int64, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockLessonRepo) ListByModule(ctx context.Context, moduleID int64) ([]*domain.Lesson, error) {
	args := m.Called(ctx, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lesson), args.Error(1)
}

func (m *MockLessonRepo) ListByModuleAndDifficulty(ctx context.Context, moduleID int64, difficulty domain.DifficultyLevel) ([]*domain.Lesson, error) {
	args := m.Called(ctx, moduleID, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lesson), args.Error(1)
}

// MockChunkRepo mocks the vector store adapter
type MockChunkRepo struct {
	mock.Mock
}

func (m *MockChunkRepo) Insert(ctx context.Context, chunk *domain.LessonChunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func (m *MockChunkRepo) DeleteByLesson(ctx context.Context, lessonID int64) error {
	args := m.Called(ctx, lessonID)
	return args.Error(0)
}

func (m *MockChunkRepo) Search(ctx context.Context, vector []float32, limit int) ([]*ChunkMatch, error) {
	args := m.Called(ctx, vector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChunkMatch), args.Error(1)
}

// MockModuleRepo mocks the module repository
type MockModuleRepo struct {
	mock.Mock
}

func (m *MockModuleRepo) GetByID(ctx context.Context, id int64) (*domain.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Module), args.Error(1)
}

func (m *MockModuleRepo) NextInCourse(ctx context.Context, courseID int64, position int) (*domain.Module, error) {
	args := m.Called(ctx, courseID, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Module), args.Error(1)
}

// MockAudioExtractor mocks the media extraction stage
type MockAudioExtractor struct {
	mock.Mock
}

func (m *MockAudioExtractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	args := m.Called(ctx, videoPath)
	return args.String(0), args.Error(1)
}

// MockInsightGenerator mocks the insight generation stage
type MockInsightGenerator struct {
	mock.Mock
}

func (m *MockInsightGenerator) GenerateInsights(ctx context.Context, audioPath string) (*domain.VideoInsights, error) {
	args := m.Called(ctx, audioPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VideoInsights), args.Error(1)
}

// MockTranscriptFetcher mocks the platform transcript provider
type MockTranscriptFetcher struct {
	mock.Mock
}

func (m *MockTranscriptFetcher) Fetch(ctx context.Context, videoURL string) (string, error) {
	args := m.Called(ctx, videoURL)
	return args.String(0), args.Error(1)
}

// fakeTxRunner executes the callback immediately against the given mock
// repositories, recording how many transactions were started.
type fakeTxRunner struct {
	lessons  *MockLessonRepo
	chunks   *MockChunkRepo
	beginErr error
	began    int
}

func (r *fakeTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if r.beginErr != nil {
		return r.beginErr
	}
	r.began++
	return fn(r)
}

func (r *fakeTxRunner) Lessons() LessonRepositoryInterface { return r.lessons }
func (r *fakeTxRunner) Chunks() ChunkRepositoryInterface   { return r.chunks }

var errBoom = errors.New("boom")
