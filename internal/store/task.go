package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/evanhall/tasklist-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
//
// Every read and mutation is scoped by owner: the store filters on both
// the task ID and the owning user ID in the same query, so "missing" and
// "owned by someone else" are indistinguishable by construction and there
// is no check/use gap against the backing database.
type TaskStore interface {
	// Create persists a new task and assigns its ID.
	// The owner is taken from task.UserID and is immutable afterwards.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUser retrieves the task with the given ID if it is owned by
	// userID. Returns ErrTaskNotFound when no such task exists or when it
	// belongs to a different owner.
	GetForUser(ctx context.Context, userID uuid.UUID, id int64) (*domain.Task, error)

	// ListForUser returns all tasks owned by userID, in stable store
	// iteration order.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListCompletedForUser returns all completed tasks owned by userID.
	ListCompletedForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// UpdateForUser replaces the name and completion flag of the task with
	// the given ID if it is owned by userID. ID and owner are never
	// modified. Returns ErrTaskNotFound under the same dual condition as
	// GetForUser.
	UpdateForUser(ctx context.Context, userID uuid.UUID, task *domain.Task) error

	// DeleteForUser permanently removes the task with the given ID if it
	// is owned by userID. Returns ErrTaskNotFound under the same dual
	// condition as GetForUser.
	DeleteForUser(ctx context.Context, userID uuid.UUID, id int64) error
}
