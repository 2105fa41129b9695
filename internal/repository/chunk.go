package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/studyhall-ai/studyhall/internal/domain"
	"github.com/studyhall-ai/studyhall/internal/service"
)

// ChunkRepository handles persistence and similarity search of lesson
// chunk embeddings.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx dbtx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

func (r *ChunkRepository) Insert(ctx context.Context, c *domain.LessonChunk) error {
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO lesson_chunks (lesson_id, content, embedding, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.LessonID, c.Content, pgvector.NewVector(c.Embedding), createdAt,
	).Scan(&c.ID)
}

func (r *ChunkRepository) DeleteByLesson(ctx context.Context, lessonID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM lesson_chunks WHERE lesson_id = $1`, lessonID)
	return err
}

// Search returns the chunks nearest to the query vector by cosine
// distance, ascending. Ties are broken by id so results are stable.
func (r *ChunkRepository) Search(ctx context.Context, vector []float32, limit int) ([]*service.ChunkMatch, error) {
	vec := pgvector.NewVector(vector)

	rows, err := r.db.Query(ctx,
		`SELECT id, lesson_id, content, created_at, embedding <=> $1 AS distance
		 FROM lesson_chunks
		 ORDER BY embedding <=> $1 ASC, id ASC
		 LIMIT $2`,
		vec, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*service.ChunkMatch, 0, limit)
	for rows.Next() {
		var m service.ChunkMatch
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.LessonID, &m.Chunk.Content, &m.Chunk.CreatedAt, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

func (r *ChunkRepository) CountByLesson(ctx context.Context, lessonID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM lesson_chunks WHERE lesson_id = $1`, lessonID).Scan(&count)
	return count, err
}
