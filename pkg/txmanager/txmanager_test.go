package txmanager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsSerializationFailure(t *testing.T) {
	serialization := &pq.Error{Code: "40001"}

	t.Run("bare driver error", func(t *testing.T) {
		assert.True(t, IsSerializationFailure(serialization))
	})

	t.Run("wrapped on commit", func(t *testing.T) {
		err := fmt.Errorf("%w: commit: %w", ErrTxFailed, serialization)
		assert.True(t, IsSerializationFailure(err))
	})

	t.Run("wrapped twice", func(t *testing.T) {
		// Репозиторий оборачивает ошибку драйвера, транзакция - ошибку репозитория
		repoErr := fmt.Errorf("%w: UpdateRevisioned - execute update: %w",
			errors.New("storage: exec query"), serialization)
		err := fmt.Errorf("%w: rollback after %w: %v", ErrTxFailed, repoErr, errors.New("tx done"))
		assert.True(t, IsSerializationFailure(err))
	})

	t.Run("other sqlstate", func(t *testing.T) {
		err := fmt.Errorf("%w: commit: %w", ErrTxFailed, &pq.Error{Code: "23505"})
		assert.False(t, IsSerializationFailure(err))
	})

	t.Run("no driver error in chain", func(t *testing.T) {
		assert.False(t, IsSerializationFailure(errors.New("plain")))
		assert.False(t, IsSerializationFailure(nil))
	})
}
