package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTaskNameLength bounds the free-text task name.
const MaxTaskNameLength = 500

// Task validation errors.
var (
	ErrEmptyTaskOwner  = fmt.Errorf("%w: task owner cannot be empty", ErrValidation)
	ErrTaskNameTooLong = fmt.Errorf("%w: task name must be at most 500 characters long", ErrValidation)
)

// Task represents a single task-list entry.
//
// Every task has exactly one owner, assigned at creation and never
// reassigned. The owner reference is used only for lookup and
// authorization; the Task does not lifecycle the User.
//
// The ID is assigned by the store on creation and is stable for the
// lifetime of the record.
type Task struct {
	ID         int64     `json:"id"`
	UserID     uuid.UUID `json:"-"` // Owner reference, never exposed in responses
	Name       string    `json:"name"`
	IsComplete bool      `json:"is_complete"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// The ID is left at zero; the store assigns it on insert.
// Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, name string, isComplete bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		UserID:     ownerID,
		Name:       name,
		IsComplete: isComplete,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// The name may be empty; it is free text.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if utf8.RuneCountInString(t.Name) > MaxTaskNameLength {
		return ErrTaskNameTooLong
	}
	return nil
}
