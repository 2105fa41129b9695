package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyhall-ai/studyhall/internal/domain"
)

type ModuleRepository struct {
	db dbtx
}

func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{db: pool}
}

func NewModuleRepositoryWithTx(tx pgx.Tx) *ModuleRepository {
	return &ModuleRepository{db: tx}
}

func (r *ModuleRepository) Create(ctx context.Context, m *domain.Module) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO modules (course_id, title, position) VALUES ($1, $2, $3) RETURNING id`,
		m.CourseID, m.Title, m.Position,
	).Scan(&m.ID)
}

func (r *ModuleRepository) GetByID(ctx context.Context, id int64) (*domain.Module, error) {
	var m domain.Module
	err := r.db.QueryRow(ctx,
		`SELECT id, course_id, title, position FROM modules WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.CourseID, &m.Title, &m.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModuleNotFound
		}
		return nil, err
	}
	return &m, nil
}

// NextInCourse returns the module that follows the given position in the
// course ordering. ErrModuleNotFound means the course has no further
// modules.
func (r *ModuleRepository) NextInCourse(ctx context.Context, courseID int64, position int) (*domain.Module, error) {
	var m domain.Module
	err := r.db.QueryRow(ctx,
		`SELECT id, course_id, title, position
		 FROM modules
		 WHERE course_id = $1 AND position > $2
		 ORDER BY position ASC, id ASC
		 LIMIT 1`,
		courseID, position,
	).Scan(&m.ID, &m.CourseID, &m.Title, &m.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModuleNotFound
		}
		return nil, err
	}
	return &m, nil
}
