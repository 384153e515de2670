package event

import (
	"time"

	"github.com/google/uuid"
)

// Note is one bullet point on the todo list.
type Note struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// NewNote creates a note stamped with a fresh id.
func NewNote(text string, now time.Time) Note {
	return Note{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: now,
	}
}
