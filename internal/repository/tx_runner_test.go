//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
	"github.com/studyhall-ai/studyhall/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunner_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	moduleRepo := NewModuleRepository(pool)
	lessonRepo := NewLessonRepository(pool)
	chunkRepo := NewChunkRepository(pool)
	runner := NewTxRunner(pool)

	module := &domain.Module{CourseID: 1, Title: "Module", Position: 1}
	require.NoError(t, moduleRepo.Create(ctx, module))
	lesson := &domain.Lesson{ModuleID: module.ID, Title: "Lesson", Position: 1}
	require.NoError(t, lessonRepo.Create(ctx, lesson))

	boom := errors.New("boom")
	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		chunk := &domain.LessonChunk{LessonID: lesson.ID, Content: "a", Embedding: unitVector(768, 0)}
		if err := repos.Chunks().Insert(ctx, chunk); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := chunkRepo.CountByLesson(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "rolled back insert must not be visible")
}

func TestTxRunner_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	moduleRepo := NewModuleRepository(pool)
	lessonRepo := NewLessonRepository(pool)
	runner := NewTxRunner(pool)

	module := &domain.Module{CourseID: 1, Title: "Module", Position: 1}
	require.NoError(t, moduleRepo.Create(ctx, module))
	lesson := &domain.Lesson{ModuleID: module.ID, Title: "Lesson", Position: 1}
	require.NoError(t, lessonRepo.Create(ctx, lesson))

	insights := &domain.VideoInsights{Transcript: "txn transcript", KeyTakeaways: []string{}, Chapters: []domain.Chapter{}}
	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		return repos.Lessons().UpdateInsights(ctx, lesson.ID, insights)
	})
	require.NoError(t, err)

	retrieved, err := lessonRepo.GetByID(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "txn transcript", retrieved.Transcript)
}
