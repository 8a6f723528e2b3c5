package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	t.Run("creates valid task with defaults", func(t *testing.T) {
		t.Parallel()
		task, err := NewTask(owner, "buy milk", false)
		require.NoError(t, err)

		assert.Zero(t, task.ID, "ID is assigned by the store")
		assert.Equal(t, owner, task.UserID)
		assert.Equal(t, "buy milk", task.Name)
		assert.False(t, task.IsComplete)
	})

	t.Run("empty name is allowed", func(t *testing.T) {
		t.Parallel()
		task, err := NewTask(owner, "", true)
		require.NoError(t, err)
		assert.Empty(t, task.Name)
		assert.True(t, task.IsComplete)
	})

	t.Run("missing owner is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewTask(uuid.Nil, "buy milk", false)
		assert.ErrorIs(t, err, ErrEmptyTaskOwner)
	})

	t.Run("oversized name is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewTask(owner, strings.Repeat("x", MaxTaskNameLength+1), false)
		assert.ErrorIs(t, err, ErrTaskNameTooLong)
	})
}
