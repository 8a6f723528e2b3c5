package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanhall/tasklist-api/internal/api"
	apimiddleware "github.com/evanhall/tasklist-api/internal/api/middleware"
	"github.com/evanhall/tasklist-api/internal/config"
	"github.com/evanhall/tasklist-api/internal/domain"
	"github.com/evanhall/tasklist-api/internal/service"
	"github.com/evanhall/tasklist-api/internal/service/auth"
	"github.com/evanhall/tasklist-api/internal/store"
)

// fakeUserStore is an in-memory store.UserStore with the same
// case-insensitive uniqueness semantics as the SQL implementation.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.NormalizedUsername() == user.NormalizedUsername() {
			return store.ErrUsernameExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	normalized := domain.NormalizeUsername(username)
	for _, user := range f.users {
		if user.NormalizedUsername() == normalized {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// fakeTaskStore is an in-memory store.TaskStore assigning sequential
// int64 IDs and filtering every lookup by owner.
type fakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[int64]*domain.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetForUser(
	ctx context.Context,
	userID uuid.UUID,
	id int64,
) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	return f.list(userID, false), nil
}

func (f *fakeTaskStore) ListCompletedForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Task, error) {
	return f.list(userID, true), nil
}

func (f *fakeTaskStore) list(userID uuid.UUID, completedOnly bool) []*domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Task{}
	for id := int64(1); id <= f.nextID; id++ {
		task, ok := f.tasks[id]
		if !ok || task.UserID != userID {
			continue
		}
		if completedOnly && !task.IsComplete {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out
}

func (f *fakeTaskStore) UpdateForUser(
	ctx context.Context,
	userID uuid.UUID,
	task *domain.Task,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[task.ID]
	if !ok || existing.UserID != userID {
		return store.ErrTaskNotFound
	}
	existing.Name = task.Name
	existing.IsComplete = task.IsComplete
	return nil
}

func (f *fakeTaskStore) DeleteForUser(ctx context.Context, userID uuid.UUID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[id]
	if !ok || existing.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

// newTestHandler wires real services over in-memory stores behind the
// same route table the server uses.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	userStore := newFakeUserStore()
	taskStore := newFakeTaskStore()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	userService := service.NewUserService(userStore, auth.NewBcryptHasher(), nil)
	taskService := service.NewTaskService(taskStore, nil)

	authHandler := api.NewAuthHandler(userService, jwtService, nil)
	taskHandler := api.NewTaskHandler(taskService, nil)
	authMiddleware := apimiddleware.NewAuthMiddleware(jwtService, userStore)

	r := chi.NewRouter()
	r.Use(apimiddleware.TraceMiddleware)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/completed", taskHandler.ListCompletedTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		})
	})

	return r
}

// doJSON performs a request against the handler, marshaling body when
// non-nil and attaching the bearer token when non-empty.
func doJSON(
	t *testing.T,
	handler http.Handler,
	method, path, token string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerAndLogin registers a user and returns a valid bearer token.
func registerAndLogin(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "",
		api.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[api.AuthResponse](t, rec)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates user without leaking credentials", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(t)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
			api.RegisterRequest{Username: "alice", Password: "pw123"})
		require.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeBody[api.RegisterResponse](t, rec)
		assert.Equal(t, "alice", resp.Username)
		assert.NotEmpty(t, resp.ID)

		// The raw body must not contain the password in any field.
		raw := decodeBody[map[string]any](t, rec)
		assert.NotContains(t, raw, "password")
		assert.NotContains(t, raw, "hashed_password")
		assert.NotContains(t, rec.Body.String(), "pw123")
	})

	t.Run("duplicate username answers 409", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(t)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
			api.RegisterRequest{Username: "alice", Password: "pw123"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
			api.RegisterRequest{Username: "Alice", Password: "other"})
		assert.Equal(t, http.StatusConflict, rec.Code,
			"case-insensitive duplicate must be rejected")
	})

	t.Run("malformed JSON answers 400", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields answer 400", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(t)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
			api.RegisterRequest{Username: "alice"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials yield a token", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(t)
		token := registerAndLogin(t, handler, "alice", "pw123")
		assert.NotEmpty(t, token)
	})

	t.Run("failure responses are indistinguishable", func(t *testing.T) {
		t.Parallel()
		handler := newTestHandler(t)

		rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "",
			api.RegisterRequest{Username: "alice", Password: "pw123"})
		require.Equal(t, http.StatusCreated, rec.Code)

		wrongPassword := doJSON(t, handler, http.MethodPost, "/api/auth/login", "",
			api.LoginRequest{Username: "alice", Password: "wrong"})
		unknownUser := doJSON(t, handler, http.MethodPost, "/api/auth/login", "",
			api.LoginRequest{Username: "nobody", Password: "pw123"})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)

		wrongBody := decodeBody[map[string]any](t, wrongPassword)
		unknownBody := decodeBody[map[string]any](t, unknownUser)
		assert.Equal(t, wrongBody["error"], unknownBody["error"],
			"login failures must not reveal whether the username exists")
	})
}

func TestTaskEndpointsRequireAuth(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/completed"},
		{http.MethodGet, "/api/tasks/1"},
		{http.MethodPut, "/api/tasks/1"},
		{http.MethodDelete, "/api/tasks/1"},
	}

	for _, route := range routes {
		route := route
		t.Run(fmt.Sprintf("%s %s", route.method, route.path), func(t *testing.T) {
			t.Parallel()
			rec := doJSON(t, handler, route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

// TestTaskLifecycle walks a single user through the whole surface:
// register, login, create, read, complete, filter, delete.
func TestTaskLifecycle(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "alice", "pw123")

	// Fresh account starts with no tasks.
	rec := doJSON(t, handler, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// Create.
	rec = doJSON(t, handler, http.MethodPost, "/api/tasks", token,
		api.TaskRequest{Name: "buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[api.TaskResponse](t, rec)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "buy milk", created.Name)
	assert.False(t, created.IsComplete)

	// Read back.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[api.TaskResponse](t, rec)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "buy milk", got.Name)

	// Nothing completed yet.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks/completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// Mark complete.
	rec = doJSON(t, handler, http.MethodPut, "/api/tasks/1", token,
		api.TaskRequest{Name: "buy milk", IsComplete: true})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[api.TaskResponse](t, rec)
	assert.Equal(t, int64(1), updated.ID)
	assert.True(t, updated.IsComplete)

	// Now it shows in the completed filter.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks/completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decodeBody[[]api.TaskResponse](t, rec)
	require.Len(t, completed, 1)
	assert.Equal(t, int64(1), completed[0].ID)

	// Delete.
	rec = doJSON(t, handler, http.MethodDelete, "/api/tasks/1", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Gone.
	rec = doJSON(t, handler, http.MethodGet, "/api/tasks/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestTaskOwnershipOverHTTP verifies that another authenticated user
// observes someone else's task exactly as if it did not exist.
func TestTaskOwnershipOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	aliceToken := registerAndLogin(t, handler, "alice", "pw123")
	bobToken := registerAndLogin(t, handler, "bob", "hunter2")

	rec := doJSON(t, handler, http.MethodPost, "/api/tasks", aliceToken,
		api.TaskRequest{Name: "alice's secret", IsComplete: true})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[api.TaskResponse](t, rec)
	path := fmt.Sprintf("/api/tasks/%d", created.ID)

	missingPath := "/api/tasks/999"

	t.Run("get", func(t *testing.T) {
		owned := doJSON(t, handler, http.MethodGet, path, bobToken, nil)
		missing := doJSON(t, handler, http.MethodGet, missingPath, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, owned.Code)
		assert.Equal(t, http.StatusNotFound, missing.Code)

		ownedBody := decodeBody[map[string]any](t, owned)
		missingBody := decodeBody[map[string]any](t, missing)
		assert.Equal(t, missingBody["error"], ownedBody["error"],
			"not-owned and missing must be indistinguishable")
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPut, path, bobToken,
			api.TaskRequest{Name: "stolen", IsComplete: false})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodDelete, path, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/tasks", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())

		rec = doJSON(t, handler, http.MethodGet, "/api/tasks/completed", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("owner still has the task", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, path, aliceToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInvalidTaskID(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "alice", "pw123")

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		t.Run(id, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodGet, "/api/tasks/"+id, token, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTaskNameTooLongOverHTTP(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "alice", "pw123")

	longName := make([]byte, domain.MaxTaskNameLength+1)
	for i := range longName {
		longName[i] = 'x'
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/tasks", token,
		api.TaskRequest{Name: string(longName)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
