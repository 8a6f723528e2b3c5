package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evanhall/tasklist-api/internal/domain"
	"github.com/evanhall/tasklist-api/internal/platform/logger"
	"github.com/evanhall/tasklist-api/internal/store"
)

// TaskService is the authorization gate for task records.
//
// Every operation takes the resolved caller identity as an explicit
// argument and enforces that the accessed record belongs to that caller.
// A task that exists but is owned by someone else yields the same
// store.ErrTaskNotFound as a task that does not exist, so callers cannot
// probe for the existence of other users' records.
//
// Ownership is re-checked inside the store on every read and write rather
// than trusted from a prior lookup, which eliminates check/use gaps when
// records are concurrently deleted.
type TaskService interface {
	// List returns all tasks owned by the caller, in stable store order.
	List(ctx context.Context, callerID uuid.UUID) ([]*domain.Task, error)

	// Get returns the caller's task with the given ID.
	// Returns store.ErrTaskNotFound when the task is missing or owned by a
	// different user.
	Get(ctx context.Context, callerID uuid.UUID, id int64) (*domain.Task, error)

	// Create persists a new task owned by the caller and returns it with
	// its store-assigned ID.
	Create(ctx context.Context, callerID uuid.UUID, name string, isComplete bool) (*domain.Task, error)

	// Update replaces the name and completion flag of the caller's task
	// with the given ID. The task's ID and owner are immutable; request
	// values for them are ignored. Returns store.ErrTaskNotFound under the
	// same dual condition as Get.
	//
	// Two concurrent updates of the same task race at the store level:
	// each write is atomic, but the later one wins. This lost-update
	// behavior is accepted.
	Update(ctx context.Context, callerID uuid.UUID, id int64, name string, isComplete bool) (*domain.Task, error)

	// Delete permanently removes the caller's task with the given ID.
	// Returns store.ErrTaskNotFound under the same dual condition as Get.
	Delete(ctx context.Context, callerID uuid.UUID, id int64) error

	// ListCompleted returns the caller's tasks with is_complete set.
	ListCompleted(ctx context.Context, callerID uuid.UUID) ([]*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// Ensure taskServiceImpl implements TaskService
var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) TaskService {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}
}

// List implements TaskService.List.
func (s *taskServiceImpl) List(
	ctx context.Context,
	callerID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskStore.ListForUser(ctx, callerID)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", callerID.String()))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(
	ctx context.Context,
	callerID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetForUser(ctx, callerID, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("user_id", callerID.String()))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// Create implements TaskService.Create.
// The owner is always the caller; there is no way to create a task for
// another user.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	callerID uuid.UUID,
	name string,
	isComplete bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(callerID, name, isComplete)
	if err != nil {
		log.Debug("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", callerID.String()))
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", callerID.String()))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// Update implements TaskService.Update.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	callerID uuid.UUID,
	id int64,
	name string,
	isComplete bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task := &domain.Task{
		ID:         id,
		UserID:     callerID,
		Name:       name,
		IsComplete: isComplete,
	}
	if err := task.Validate(); err != nil {
		log.Debug("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, err
	}

	if err := s.taskStore.UpdateForUser(ctx, callerID, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, err
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("user_id", callerID.String()))
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// Re-read so the response reflects the stored record, including
	// timestamps.
	updated, err := s.taskStore.GetForUser(ctx, callerID, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			// Deleted concurrently between the write and the read.
			return nil, err
		}
		return nil, fmt.Errorf("failed to reload task after update: %w", err)
	}

	return updated, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, callerID uuid.UUID, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskStore.DeleteForUser(ctx, callerID, id); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return err
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("user_id", callerID.String()))
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ListCompleted implements TaskService.ListCompleted.
func (s *taskServiceImpl) ListCompleted(
	ctx context.Context,
	callerID uuid.UUID,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskStore.ListCompletedForUser(ctx, callerID)
	if err != nil {
		log.Error("failed to list completed tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", callerID.String()))
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}

	return tasks, nil
}
