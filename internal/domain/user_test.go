package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates valid user", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("alice", "pw123")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "pw123", user.Password)
		assert.Empty(t, user.HashedPassword)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("trims surrounding whitespace from username", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("  alice  ", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty username", "", "pw123", ErrEmptyUsername},
		{"username too short", "ab", "pw123", ErrUsernameTooShort},
		{"username too long", strings.Repeat("a", 65), "pw123", ErrUsernameTooLong},
		{"username with inner whitespace", "al ice", "pw123", ErrUsernameWhitespace},
		{"empty password", "alice", "", ErrEmptyPassword},
		{"password too long", "alice", strings.Repeat("p", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tt.username, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	t.Run("stored user with hash but no plaintext is valid", func(t *testing.T) {
		t.Parallel()
		user := &User{
			ID:             uuid.New(),
			Username:       "alice",
			HashedPassword: "$2a$10$somethinghashed",
		}
		assert.NoError(t, user.Validate())
	})

	t.Run("nil ID is rejected", func(t *testing.T) {
		t.Parallel()
		user := &User{Username: "alice", HashedPassword: "hash"}
		assert.ErrorIs(t, user.Validate(), ErrEmptyUserID)
	})

	t.Run("validation errors wrap ErrValidation", func(t *testing.T) {
		t.Parallel()
		user := &User{ID: uuid.New(), Username: "alice"}
		assert.ErrorIs(t, user.Validate(), ErrValidation)
	})
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice", NormalizeUsername("Alice"))
	assert.Equal(t, "alice", NormalizeUsername("  ALICE "))

	u := &User{Username: "McTavish"}
	assert.Equal(t, "mctavish", u.NormalizedUsername())
}
