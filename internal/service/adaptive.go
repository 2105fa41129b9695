package service

import (
	"context"

	"github.com/studyhall-ai/studyhall/internal/domain"
)

// passThreshold is the quiz score below which remedial content is
// recommended.
const passThreshold = 60.0

// ModuleRepositoryInterface defines the read-only module lookups needed by
// the adaptive path. Module CRUD belongs to a collaborator service.
type ModuleRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Module, error)
	NextInCourse(ctx context.Context, courseID int64, position int) (*domain.Module, error)
}

// LearningPath is a recommended list of lessons with an explanation.
type LearningPath struct {
	Message string
	Lessons []*domain.Lesson
}

// AdaptiveService recommends the next lessons based on quiz performance.
type AdaptiveService struct {
	lessonRepo LessonRepositoryInterface
	moduleRepo ModuleRepositoryInterface
}

// NewAdaptiveService creates a new AdaptiveService instance
func NewAdaptiveService(lessonRepo LessonRepositoryInterface, moduleRepo ModuleRepositoryInterface) *AdaptiveService {
	return &AdaptiveService{lessonRepo: lessonRepo, moduleRepo: moduleRepo}
}

// GeneratePath returns remedial beginner lessons from the current module
// when the score is below the threshold, otherwise lessons from the next
// module in the course.
func (s *AdaptiveService) GeneratePath(ctx context.Context, moduleID int64, score float64) (*LearningPath, error) {
	module, err := s.moduleRepo.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	if score < passThreshold {
		lessons, err := s.lessonRepo.ListByModuleAndDifficulty(ctx, module.ID, domain.DifficultyBeginner)
		if err != nil {
			return nil, err
		}
		// No dedicated beginner lessons: review the whole module instead.
		if len(lessons) == 0 {
			lessons, err = s.lessonRepo.ListByModule(ctx, module.ID)
			if err != nil {
				return nil, err
			}
		}
		return &LearningPath{
			Message: "We noticed you struggled with this topic. Here are some foundational lessons to review.",
			Lessons: lessons,
		}, nil
	}

	next, err := s.moduleRepo.NextInCourse(ctx, module.CourseID, module.Position)
	if err != nil {
		if err == domain.ErrModuleNotFound {
			return &LearningPath{
				Message: "Congratulations! You have completed the course content.",
				Lessons: []*domain.Lesson{},
			}, nil
		}
		return nil, err
	}

	lessons, err := s.lessonRepo.ListByModule(ctx, next.ID)
	if err != nil {
		return nil, err
	}
	return &LearningPath{
		Message: "Great job! You're ready for the next module.",
		Lessons: lessons,
	}, nil
}
