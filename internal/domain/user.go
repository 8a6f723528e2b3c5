package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Username and password constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
	// MaxPasswordLength is bcrypt's practical input limit.
	MaxPasswordLength = 72
)

// User validation errors. All of them wrap ErrValidation so callers can
// classify them without enumerating each one.
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyUsername       = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrUsernameTooShort    = fmt.Errorf("%w: username must be at least 3 characters long", ErrValidation)
	ErrUsernameTooLong     = fmt.Errorf("%w: username must be at most 64 characters long", ErrValidation)
	ErrUsernameWhitespace  = fmt.Errorf("%w: username cannot contain whitespace", ErrValidation)
	ErrEmptyPassword       = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrPasswordTooLong     = fmt.Errorf("%w: password must be at most 72 characters long", ErrValidation)
	ErrEmptyHashedPassword = fmt.Errorf("%w: hashed password cannot be empty", ErrValidation)
)

// User represents a registered user of the task-list service.
// Usernames are compared case-insensitively for lookup and uniqueness;
// the original casing is preserved for display.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext password, held only during registration
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given username and password.
// It generates a new UUID for the user ID and sets the creation/update
// timestamps. Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(username, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Password:  password, // Plaintext, must be hashed before storage
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizedUsername returns the username lowered for case-insensitive
// comparison. All store lookups and uniqueness checks use this form.
func (u *User) NormalizedUsername() string {
	return NormalizeUsername(u.Username)
}

// NormalizeUsername lowers a username for case-insensitive comparison.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if err := validateUsername(u.Username); err != nil {
		return err
	}

	// During registration the plaintext password is validated; existing
	// users loaded from the store carry only the hash.
	if u.Password != "" {
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if strings.ContainsFunc(username, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }) {
		return ErrUsernameWhitespace
	}
	nameLen := utf8.RuneCountInString(username)
	if nameLen < MinUsernameLength {
		return ErrUsernameTooShort
	}
	if nameLen > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	return nil
}
