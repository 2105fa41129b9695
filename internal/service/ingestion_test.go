package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newIngestionFixture(t *testing.T) (*IngestionService, *MockAudioExtractor, *MockInsightGenerator, *MockEmbedder, *fakeTxRunner) {
	t.Helper()
	extractor := new(MockAudioExtractor)
	generator := new(MockInsightGenerator)
	embedder := new(MockEmbedder)
	runner := &fakeTxRunner{lessons: new(MockLessonRepo), chunks: new(MockChunkRepo)}
	indexing := NewIndexingService(embedder, runner, ChunkConfig{Size: 50, Overlap: 10})
	svc := NewIngestionService(extractor, generator, indexing, runner, time.Minute)
	return svc, extractor, generator, embedder, runner
}

func tempAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesson.mp4.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	return path
}

func TestIngestionService_Run_Success(t *testing.T) {
	svc, extractor, generator, embedder, runner := newIngestionFixture(t)
	ctx := context.Background()
	audioPath := tempAudioFile(t)

	insights := &domain.VideoInsights{
		Transcript:   "Welcome to the lesson. Today we cover the basics of grammar.",
		KeyTakeaways: []string{"Grammar matters"},
		Chapters:     []domain.Chapter{{Timestamp: "00:00", Title: "Intro"}},
	}

	extractor.On("ExtractAudio", mock.Anything, "/media/lesson.mp4").Return(audioPath, nil)
	generator.On("GenerateInsights", mock.Anything, audioPath).Return(insights, nil)
	runner.lessons.On("UpdateInsights", mock.Anything, int64(3), insights).Return(nil)
	runner.chunks.On("DeleteByLesson", mock.Anything, int64(3)).Return(nil)
	embedder.On("EmbedDocument", mock.Anything, mock.Anything).Return(make([]float32, 768), nil)
	runner.chunks.On("Insert", mock.Anything, mock.MatchedBy(func(c *domain.LessonChunk) bool {
		return c.LessonID == 3
	})).Return(nil)

	err := svc.Run(ctx, 3, "/media/lesson.mp4")

	require.NoError(t, err)
	// Insight persistence and chunk storage share one transaction.
	assert.Equal(t, 1, runner.began)
	// Transient audio is gone after the pipeline finishes.
	_, statErr := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(statErr))
	extractor.AssertExpectations(t)
	generator.AssertExpectations(t)
	runner.lessons.AssertExpectations(t)
}

func TestIngestionService_Run_ExtractionFailure(t *testing.T) {
	svc, extractor, generator, _, runner := newIngestionFixture(t)
	ctx := context.Background()

	extractor.On("ExtractAudio", mock.Anything, "/media/broken.mp4").Return("", errBoom)

	err := svc.Run(ctx, 3, "/media/broken.mp4")

	// The pipeline reports the failure to its boundary, but nothing was
	// written: no transcript, no chunks.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio_extraction")
	assert.Zero(t, runner.began)
	generator.AssertNotCalled(t, "GenerateInsights")
	runner.lessons.AssertNotCalled(t, "UpdateInsights")
	runner.chunks.AssertNotCalled(t, "Insert")
}

func TestIngestionService_Run_InsightFailureDegrades(t *testing.T) {
	svc, extractor, generator, embedder, runner := newIngestionFixture(t)
	ctx := context.Background()
	audioPath := tempAudioFile(t)

	extractor.On("ExtractAudio", mock.Anything, "/media/lesson.mp4").Return(audioPath, nil)
	generator.On("GenerateInsights", mock.Anything, audioPath).Return(nil, errBoom)
	runner.lessons.On("UpdateInsights", mock.Anything, int64(3), mock.MatchedBy(func(i *domain.VideoInsights) bool {
		return i.Degraded && i.Transcript == domain.FailedTranscriptMarker
	})).Return(nil)

	err := svc.Run(ctx, 3, "/media/lesson.mp4")

	// The placeholder is persisted, but degraded transcripts are never
	// chunked or embedded.
	require.NoError(t, err)
	assert.Equal(t, 1, runner.began)
	embedder.AssertNotCalled(t, "EmbedDocument")
	runner.chunks.AssertNotCalled(t, "Insert")
	runner.lessons.AssertExpectations(t)
}

func TestIngestionService_Run_EmptyTranscriptSkipsIndexing(t *testing.T) {
	svc, extractor, generator, embedder, runner := newIngestionFixture(t)
	ctx := context.Background()
	audioPath := tempAudioFile(t)

	insights := &domain.VideoInsights{Transcript: "", KeyTakeaways: []string{}, Chapters: []domain.Chapter{}}

	extractor.On("ExtractAudio", mock.Anything, mock.Anything).Return(audioPath, nil)
	generator.On("GenerateInsights", mock.Anything, audioPath).Return(insights, nil)
	runner.lessons.On("UpdateInsights", mock.Anything, int64(3), insights).Return(nil)

	err := svc.Run(ctx, 3, "/media/lesson.mp4")

	require.NoError(t, err)
	embedder.AssertNotCalled(t, "EmbedDocument")
	runner.chunks.AssertNotCalled(t, "DeleteByLesson")
}

func TestIngestionService_Run_PersistenceFailureCleansUpAudio(t *testing.T) {
	svc, extractor, generator, _, runner := newIngestionFixture(t)
	ctx := context.Background()
	audioPath := tempAudioFile(t)

	insights := &domain.VideoInsights{Transcript: "Some transcript.", KeyTakeaways: []string{}, Chapters: []domain.Chapter{}}

	extractor.On("ExtractAudio", mock.Anything, mock.Anything).Return(audioPath, nil)
	generator.On("GenerateInsights", mock.Anything, audioPath).Return(insights, nil)
	runner.lessons.On("UpdateInsights", mock.Anything, int64(3), insights).Return(errBoom)

	err := svc.Run(ctx, 3, "/media/lesson.mp4")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistence")
	// Cleanup is unconditional regardless of the exit path.
	_, statErr := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIngestionService_Run_EmbeddingFailureRollsBackWholeStage(t *testing.T) {
	svc, extractor, generator, embedder, runner := newIngestionFixture(t)
	ctx := context.Background()
	audioPath := tempAudioFile(t)

	insights := &domain.VideoInsights{Transcript: "A transcript long enough to chunk.", KeyTakeaways: []string{}, Chapters: []domain.Chapter{}}

	extractor.On("ExtractAudio", mock.Anything, mock.Anything).Return(audioPath, nil)
	generator.On("GenerateInsights", mock.Anything, audioPath).Return(insights, nil)
	runner.lessons.On("UpdateInsights", mock.Anything, int64(3), insights).Return(nil)
	runner.chunks.On("DeleteByLesson", mock.Anything, int64(3)).Return(nil)
	embedder.On("EmbedDocument", mock.Anything, mock.Anything).Return(nil, errBoom)

	err := svc.Run(ctx, 3, "/media/lesson.mp4")

	require.Error(t, err)
	runner.chunks.AssertNotCalled(t, "Insert")
}
