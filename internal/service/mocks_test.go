package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/evanhall/tasklist-api/internal/domain"
	"github.com/evanhall/tasklist-api/internal/store"
)

// errStoreDown simulates backing-store I/O failure.
var errStoreDown = errors.New("store unavailable: connection refused")

// memUserStore is an in-memory store.UserStore for tests.
// It enforces the same case-insensitive uniqueness rule as the real
// store's LOWER(username) index.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	fail  bool // when set, every call fails with errStoreDown
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

var _ store.UserStore = (*memUserStore)(nil)

func (m *memUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	for _, existing := range m.users {
		if existing.NormalizedUsername() == user.NormalizedUsername() {
			return store.ErrUsernameExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	normalized := domain.NormalizeUsername(username)
	for _, user := range m.users {
		if user.NormalizedUsername() == normalized {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUserStore) delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// memTaskStore is an in-memory store.TaskStore for tests. IDs are
// assigned sequentially, mirroring the BIGSERIAL column, and every
// lookup filters by owner exactly like the SQL implementation.
type memTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
	fail   bool
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[int64]*domain.Task)}
}

var _ store.TaskStore = (*memTaskStore)(nil)

func (m *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	m.nextID++
	task.ID = m.nextID
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *memTaskStore) GetForUser(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *memTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	return m.list(userID, false)
}

func (m *memTaskStore) ListCompletedForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	return m.list(userID, true)
}

func (m *memTaskStore) list(userID uuid.UUID, completedOnly bool) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStoreDown
	}
	out := []*domain.Task{}
	for id := int64(1); id <= m.nextID; id++ {
		task, ok := m.tasks[id]
		if !ok || task.UserID != userID {
			continue
		}
		if completedOnly && !task.IsComplete {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memTaskStore) UpdateForUser(
	ctx context.Context,
	userID uuid.UUID,
	task *domain.Task,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != userID {
		return store.ErrTaskNotFound
	}
	existing.Name = task.Name
	existing.IsComplete = task.IsComplete
	return nil
}

func (m *memTaskStore) DeleteForUser(ctx context.Context, userID uuid.UUID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	existing, ok := m.tasks[id]
	if !ok || existing.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}
