package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

const lessonColumns = `id, module_id, title, content, difficulty, position, video_url, storage_key, transcript, key_takeaways, chapters, created_at, updated_at`

type LessonRepository struct {
	db dbtx
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{db: pool}
}

func NewLessonRepositoryWithTx(tx pgx.Tx) *LessonRepository {
	return &LessonRepository{db: tx}
}

func (r *LessonRepository) Create(ctx context.Context, l *domain.Lesson) error {
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	if l.KeyTakeaways == nil {
		l.KeyTakeaways = []string{}
	}
	if l.Chapters == nil {
		l.Chapters = []domain.Chapter{}
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO lessons (module_id, title, content, difficulty, position, video_url, storage_key, transcript, key_takeaways, chapters, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		l.ModuleID, l.Title, l.Content, string(l.Difficulty), l.Position, nullableString(l.VideoURL), nullableString(l.StorageKey), l.Transcript, l.KeyTakeaways, l.Chapters, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*domain.Lesson, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = $1`,
		id,
	)
	lesson, err := scanLesson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// UpdateInsights stores the generated transcript, takeaways and chapters
// for a lesson. Degraded placeholders overwrite prior insights too, so a
// failed re-run is visible rather than silently stale.
func (r *LessonRepository) UpdateInsights(ctx context.Context, id int64, insights *domain.VideoInsights) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE lessons
		 SET transcript = $2, key_takeaways = $3, chapters = $4, updated_at = $5
		 WHERE id = $1`,
		id, insights.Transcript, insights.KeyTakeaways, insights.Chapters, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func (r *LessonRepository) ListByModule(ctx context.Context, moduleID int64) ([]*domain.Lesson, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE module_id = $1 ORDER BY position ASC, id ASC`,
		moduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLessonRows(rows)
}

func (r *LessonRepository) ListByModuleAndDifficulty(ctx context.Context, moduleID int64, difficulty domain.DifficultyLevel) ([]*domain.Lesson, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE module_id = $1 AND difficulty = $2 ORDER BY position ASC, id ASC`,
		moduleID, string(difficulty),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLessonRows(rows)
}

func (r *LessonRepository) SetStorageKey(ctx context.Context, id int64, key string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE lessons SET storage_key = $2, updated_at = $3 WHERE id = $1`,
		id, nullableString(key), time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLessonNotFound
	}
	return nil
}

func scanLesson(row pgx.Row) (*domain.Lesson, error) {
	var l domain.Lesson
	var difficulty string
	var videoURL, storageKey *string
	err := row.Scan(
		&l.ID, &l.ModuleID, &l.Title, &l.Content, &difficulty, &l.Position,
		&videoURL, &storageKey, &l.Transcript, &l.KeyTakeaways, &l.Chapters,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Difficulty = domain.DifficultyLevel(difficulty)
	if videoURL != nil {
		l.VideoURL = *videoURL
	}
	if storageKey != nil {
		l.StorageKey = *storageKey
	}
	return &l, nil
}

func scanLessonRows(rows pgx.Rows) ([]*domain.Lesson, error) {
	lessons := make([]*domain.Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}
