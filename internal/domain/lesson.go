package domain

import (
	"fmt"
	"time"
)

// DifficultyLevel classifies a lesson for the adaptive learning path.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// Chapter is a generated chapter marker within a video lesson.
type Chapter struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// Lesson is the content unit that owns chunks. Course/module CRUD belongs
// to a collaborator service; this core only reads modules and writes the
// insight fields it produces.
type Lesson struct {
	ID           int64
	ModuleID     int64
	Title        string
	Content      string
	Difficulty   DifficultyLevel
	Position     int
	VideoURL     string
	StorageKey   string
	Transcript   string
	KeyTakeaways []string
	Chapters     []Chapter
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Module groups lessons within a course, ordered by Position.
type Module struct {
	ID       int64
	CourseID int64
	Title    string
	Position int
}

// ValidateLesson validates a Lesson instance before persistence
func ValidateLesson(l *Lesson) error {
	if l == nil {
		return fmt.Errorf("lesson cannot be nil")
	}
	if l.ModuleID <= 0 {
		return fmt.Errorf("lesson ModuleID is required")
	}
	if l.Title == "" {
		return fmt.Errorf("lesson Title is required")
	}
	if l.Difficulty != "" && !isValidDifficulty(l.Difficulty) {
		return fmt.Errorf("lesson Difficulty is invalid: %s", l.Difficulty)
	}
	return nil
}

func isValidDifficulty(d DifficultyLevel) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}
