package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evanhall/tasklist-api/internal/domain"
	"github.com/evanhall/tasklist-api/internal/platform/logger"
	"github.com/evanhall/tasklist-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
//
// Every query carries both the task ID and the owner's user ID in its
// WHERE clause. A task that exists but belongs to a different owner
// therefore produces the same result as one that does not exist at all.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
// The task ID is assigned by the database and written back to the task.
// Returns store.ErrInvalidEntity if the owner does not exist (foreign key
// violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (user_id, name, is_complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Name,
		task.IsComplete,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", task.UserID.String()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetForUser implements store.TaskStore.GetForUser.
func (s *PostgresTaskStore) GetForUser(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, is_complete, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	var task domain.Task
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID,
		&task.UserID,
		&task.Name,
		&task.IsComplete,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for user",
				slog.Int64("task_id", id),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// ListForUser implements store.TaskStore.ListForUser.
// Tasks are returned ordered by ID, which is stable across repeated calls
// absent mutation.
func (s *PostgresTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	query := `
		SELECT id, user_id, name, is_complete, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY id ASC
	`
	return s.queryTasks(ctx, query, userID)
}

// ListCompletedForUser implements store.TaskStore.ListCompletedForUser.
func (s *PostgresTaskStore) ListCompletedForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	query := `
		SELECT id, user_id, name, is_complete, created_at, updated_at
		FROM tasks
		WHERE user_id = $1 AND is_complete = TRUE
		ORDER BY id ASC
	`
	return s.queryTasks(ctx, query, userID)
}

// UpdateForUser implements store.TaskStore.UpdateForUser.
// Only the name and completion flag are written; ID and owner are
// immutable.
func (s *PostgresTaskStore) UpdateForUser(
	ctx context.Context,
	userID uuid.UUID,
	task *domain.Task,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	updatedAt := time.Now().UTC()

	query := `
		UPDATE tasks
		SET name = $1, is_complete = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Name,
		task.IsComplete,
		updatedAt,
		task.ID,
		userID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to update task: %w", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update",
			slog.Int64("task_id", task.ID),
			slog.String("user_id", userID.String()))
		return err
	}

	task.UpdatedAt = updatedAt

	log.Debug("task updated successfully",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", userID.String()))
	return nil
}

// DeleteForUser implements store.TaskStore.DeleteForUser.
func (s *PostgresTaskStore) DeleteForUser(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete",
			slog.Int64("task_id", id),
			slog.String("user_id", userID.String()))
		return err
	}

	log.Info("task deleted successfully",
		slog.Int64("task_id", id),
		slog.String("user_id", userID.String()))
	return nil
}

// queryTasks runs a task list query and scans the rows.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Name,
			&task.IsComplete,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}
