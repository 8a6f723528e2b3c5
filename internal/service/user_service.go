package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evanhall/tasklist-api/internal/domain"
	"github.com/evanhall/tasklist-api/internal/platform/logger"
	"github.com/evanhall/tasklist-api/internal/service/auth"
	"github.com/evanhall/tasklist-api/internal/store"
)

// dummyBcryptHash is a valid bcrypt hash of an unguessable value. When
// authentication is attempted against a nonexistent username, the
// password is compared against this hash so the user-not-found path costs
// the same as a wrong-password check and the two failures cannot be told
// apart by timing.
const dummyBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService provides user registration and credential verification.
type UserService interface {
	// Register creates a new user with the given username and password.
	// The password is hashed before storage; the plaintext is never
	// persisted or logged.
	// Returns store.ErrUsernameExists if a case-insensitive match for the
	// username already exists.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate verifies the given credentials.
	// Returns store.ErrUserNotFound when no matching username exists, or
	// auth.ErrInvalidCredentials when the password does not verify against
	// the stored hash. The two failure paths take equivalent time.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// GetByID retrieves a user by ID.
	// Returns store.ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	logger    *slog.Logger
}

// Ensure userServiceImpl implements UserService
var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) UserService {
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.Register.
func (s *userServiceImpl) Register(
	ctx context.Context,
	username, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, password)
	if err != nil {
		log.Debug("user validation failed during registration",
			slog.String("error", err.Error()))
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("registration rejected: username already exists")
			return nil, err
		}
		log.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *userServiceImpl) Authenticate(
	ctx context.Context,
	username, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Burn a bcrypt comparison so this path is not measurably
			// faster than a wrong-password failure.
			_ = s.hasher.Compare(dummyBcryptHash, password)
			log.Debug("authentication failed: user not found")
			return nil, err
		}
		log.Error("failed to look up user for authentication",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("authentication failed: password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	log.Debug("user authenticated", slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetByID implements UserService.GetByID.
func (s *userServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
