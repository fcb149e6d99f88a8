package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

// failingExecutor возвращает заданную ошибку на любой запрос
type failingExecutor struct {
	err error
}

func (f *failingExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, f.err
}

func (f *failingExecutor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, f.err
}

func (f *failingExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

// Ошибка драйвера остается в цепочке после оборачивания репозиторием:
// retry-цикл сериализуемых транзакций должен видеть SQLSTATE 40001
func TestUpdateRevisioned_KeepsDriverErrorInChain(t *testing.T) {
	ctx := context.Background()
	cause := &pq.Error{Code: "40001"}

	slot := &domain.AvailabilitySlot{ID: "slot-1", Rev: 1}
	repo := NewSlotRepository(&failingExecutor{err: cause})

	err := repo.UpdateRevisioned(ctx, slot)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecQuery)

	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)

	assert.True(t, txmanager.IsSerializationFailure(err))
}

func TestBookingUpdateRevisioned_KeepsDriverErrorInChain(t *testing.T) {
	ctx := context.Background()
	cause := &pq.Error{Code: "40001"}

	booking := &domain.Booking{ID: "booking-1", Rev: 1}
	repo := NewBookingRepository(&failingExecutor{err: cause})

	err := repo.UpdateRevisioned(ctx, booking)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.True(t, txmanager.IsSerializationFailure(err))
}
