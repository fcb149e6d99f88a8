// Package storetest содержит общий набор проверок контракта storage
// adapter. Один и тот же набор гоняется на каждом бэкенде: in-memory
// в unit-тестах, Postgres и Redis в integration-тестах.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// NewSlot собирает валидный активный слот для тестов
func NewSlot(siteID string, capacity int) *domain.AvailabilitySlot {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.AvailabilitySlot{
		ID:              uuid.NewString(),
		OrgID:           uuid.NewString(),
		SiteID:          siteID,
		StartTime:       types.TimeString("10:00"),
		EndTime:         types.TimeString("18:00"),
		Recurrence:      domain.RecurrenceDaily,
		Capacity:        capacity,
		BookedCount:     0,
		DurationMinutes: 60,
		Status:          domain.SlotStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewBooking собирает pending бронирование для слота
func NewBooking(slot *domain.AvailabilitySlot, email string) *domain.Booking {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Booking{
		ID:          uuid.NewString(),
		SlotID:      slot.ID,
		SiteID:      slot.SiteID,
		OrgID:       slot.OrgID,
		ClientName:  "Test Client",
		ClientEmail: email,
		StartTime:   slot.StartTime,
		EndTime:     types.TimeString("11:00"),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RunSlotStoreSuite гоняет контрактные проверки SlotStore
func RunSlotStoreSuite(t *testing.T, newStore func(t *testing.T) storage.SlotStore) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)

		err := store.Create(ctx, slot)
		require.NoError(t, err)
		assert.Equal(t, int64(1), slot.Rev)

		got, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, slot.ID, got.ID)
		assert.Equal(t, slot.Capacity, got.Capacity)
		assert.Equal(t, int64(1), got.Rev)
	})

	t.Run("create duplicate id", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)

		require.NoError(t, store.Create(ctx, slot))

		dup := *slot
		err := store.Create(ctx, &dup)
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})

	t.Run("list filters inactive", func(t *testing.T) {
		store := newStore(t)
		siteID := uuid.NewString()

		active := NewSlot(siteID, 3)
		require.NoError(t, store.Create(ctx, active))

		inactive := NewSlot(siteID, 3)
		inactive.Status = domain.SlotStatusInactive
		require.NoError(t, store.Create(ctx, inactive))

		other := NewSlot(uuid.NewString(), 3)
		require.NoError(t, store.Create(ctx, other))

		activeSlots, err := store.ListActive(ctx, siteID)
		require.NoError(t, err)
		require.Len(t, activeSlots, 1)
		assert.Equal(t, active.ID, activeSlots[0].ID)

		allSlots, err := store.ListAll(ctx, siteID)
		require.NoError(t, err)
		assert.Len(t, allSlots, 2)
	})

	t.Run("conditional write succeeds on fresh rev", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)
		require.NoError(t, store.Create(ctx, slot))

		slot.BookedCount = 1
		err := store.UpdateRevisioned(ctx, slot)
		require.NoError(t, err)
		assert.Equal(t, int64(2), slot.Rev)

		got, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.BookedCount)
		assert.Equal(t, int64(2), got.Rev)
	})

	t.Run("conditional write rejects stale rev", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)
		require.NoError(t, store.Create(ctx, slot))

		stale, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)

		slot.BookedCount = 1
		require.NoError(t, store.UpdateRevisioned(ctx, slot))

		// Вторая запись несет устаревшую ревизию и обязана быть отклонена
		stale.BookedCount = 2
		err = store.UpdateRevisioned(ctx, stale)
		assert.ErrorIs(t, err, storage.ErrRevisionConflict)

		got, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.BookedCount)
	})

	t.Run("conditional write on missing slot", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)
		slot.Rev = 1

		err := store.UpdateRevisioned(ctx, slot)
		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})
}

// RunBookingStoreSuite гоняет контрактные проверки BookingStore
func RunBookingStoreSuite(t *testing.T, newStore func(t *testing.T) storage.BookingStore) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)
		booking := NewBooking(slot, "client@example.com")

		err := store.Create(ctx, booking)
		require.NoError(t, err)
		assert.Equal(t, int64(1), booking.Rev)

		got, err := store.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.ID)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrBookingNotFound)
	})

	t.Run("list by slot with status filter", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)

		pending := NewBooking(slot, "a@example.com")
		require.NoError(t, store.Create(ctx, pending))

		cancelled := NewBooking(slot, "b@example.com")
		cancelled.Status = domain.StatusCancelled
		require.NoError(t, store.Create(ctx, cancelled))

		active, err := store.ListBySlot(ctx, slot.ID, domain.ActiveStatuses)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, pending.ID, active[0].ID)

		all, err := store.ListBySlot(ctx, slot.ID, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("conditional write rejects stale rev", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)
		booking := NewBooking(slot, "client@example.com")
		require.NoError(t, store.Create(ctx, booking))

		stale, err := store.GetByID(ctx, booking.ID)
		require.NoError(t, err)

		booking.Status = domain.StatusConfirmed
		require.NoError(t, store.UpdateRevisioned(ctx, booking))
		assert.Equal(t, int64(2), booking.Rev)

		stale.Status = domain.StatusCancelled
		err = store.UpdateRevisioned(ctx, stale)
		assert.ErrorIs(t, err, storage.ErrRevisionConflict)

		got, err := store.GetByID(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
	})

	t.Run("conditional write on missing booking", func(t *testing.T) {
		store := newStore(t)
		slot := NewSlot(uuid.NewString(), 3)
		booking := NewBooking(slot, "client@example.com")
		booking.Rev = 1

		err := store.UpdateRevisioned(ctx, booking)
		assert.ErrorIs(t, err, storage.ErrBookingNotFound)
	})
}
