package domain

import (
	"fmt"
	"time"
)

// LessonChunk is a bounded segment of lesson material paired with its
// embedding vector. Chunks are immutable after creation; re-indexing a
// lesson replaces its chunk set rather than mutating rows in place.
type LessonChunk struct {
	ID        int64
	LessonID  int64
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// ValidateLessonChunk validates a LessonChunk against the configured
// embedding dimensionality before it is stored.
func ValidateLessonChunk(c *LessonChunk, dimensions int) error {
	if c == nil {
		return fmt.Errorf("lesson chunk cannot be nil")
	}
	if c.LessonID <= 0 {
		return fmt.Errorf("lesson chunk LessonID is required")
	}
	if c.Content == "" {
		return fmt.Errorf("lesson chunk Content is required")
	}
	if len(c.Embedding) != dimensions {
		return fmt.Errorf("lesson chunk embedding has %d dimensions, expected %d", len(c.Embedding), dimensions)
	}
	return nil
}
