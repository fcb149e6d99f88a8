package capacity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/memdoc"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/storetest"
)

type testLogger struct{}

func (testLogger) Info(format string, v ...interface{})  {}
func (testLogger) Warn(format string, v ...interface{})  {}
func (testLogger) Error(format string, v ...interface{}) {}

func newTestReconciler(t *testing.T, capacity int) (*Reconciler, *memdoc.SlotStore, *domain.AvailabilitySlot) {
	t.Helper()

	store := memdoc.NewSlotStore()
	slot := storetest.NewSlot("site-1", capacity)
	require.NoError(t, store.Create(context.Background(), slot))

	return NewReconciler(store, testLogger{}, nil), store, slot
}

func TestReconciler_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("increments booked count", func(t *testing.T) {
		rec, store, slot := newTestReconciler(t, 3)

		res, err := rec.Reserve(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Slot.BookedCount)
		assert.Equal(t, 1, res.Attempts)

		got, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.BookedCount)
	})

	t.Run("rejects when slot is full", func(t *testing.T) {
		rec, _, slot := newTestReconciler(t, 1)

		_, err := rec.Reserve(ctx, slot.ID)
		require.NoError(t, err)

		_, err = rec.Reserve(ctx, slot.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("rejects inactive slot", func(t *testing.T) {
		rec, store, slot := newTestReconciler(t, 3)

		slot.Status = domain.SlotStatusInactive
		require.NoError(t, store.UpdateRevisioned(ctx, slot))

		_, err := rec.Reserve(ctx, slot.ID)
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("unknown slot", func(t *testing.T) {
		rec, _, _ := newTestReconciler(t, 3)

		_, err := rec.Reserve(ctx, "missing")
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("retries through revision conflict", func(t *testing.T) {
		store := memdoc.NewSlotStore()
		slot := storetest.NewSlot("site-1", 5)
		require.NoError(t, store.Create(ctx, slot))

		// Первый UpdateRevisioned проигрывает подсунутому конкуренту
		rec := NewReconciler(&conflictOnce{SlotStore: store, store: store, slotID: slot.ID}, testLogger{}, nil)

		res, err := rec.Reserve(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Attempts)
		assert.Equal(t, 2, res.Slot.BookedCount)
	})
}

func TestReconciler_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements booked count", func(t *testing.T) {
		rec, store, slot := newTestReconciler(t, 3)

		_, err := rec.Reserve(ctx, slot.ID)
		require.NoError(t, err)

		require.NoError(t, rec.Release(ctx, slot.ID))

		got, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.BookedCount)
	})

	t.Run("never goes below zero", func(t *testing.T) {
		rec, store, slot := newTestReconciler(t, 3)

		require.NoError(t, rec.Release(ctx, slot.ID))

		got, err := store.GetByID(ctx, slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.BookedCount)
	})
}

// Два конкурентных запроса на слот с одним местом: ровно один проходит
func TestReconciler_ConcurrentAdmission(t *testing.T) {
	const workers = 3

	rec, store, slot := newTestReconciler(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rec.Reserve(ctx, slot.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)

	got, err := store.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.BookedCount)
}

// Инвариант 0 <= BookedCount <= Capacity под случайным чередованием
// конкурентных резервов и освобождений
func TestReconciler_CapacityInvariant(t *testing.T) {
	const (
		capacity = 4
		workers  = 8
		rounds   = 25
	)

	rec, store, slot := newTestReconciler(t, capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				if (i+r)%2 == 0 {
					_, err := rec.Reserve(ctx, slot.ID)
					if err != nil && !errors.Is(err, ErrCapacityExceeded) {
						t.Errorf("reserve: %v", err)
						return
					}
				} else {
					if err := rec.Release(ctx, slot.ID); err != nil {
						t.Errorf("release: %v", err)
						return
					}
				}
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.BookedCount, 0)
	assert.LessOrEqual(t, got.BookedCount, capacity)
}

// conflictOnce подменяет первый UpdateRevisioned конфликтом ревизии,
// параллельно коммитя настоящий инкремент от имени конкурента
type conflictOnce struct {
	SlotStore
	store  *memdoc.SlotStore
	slotID string
	fired  bool
}

func (c *conflictOnce) UpdateRevisioned(ctx context.Context, slot *domain.AvailabilitySlot) error {
	if !c.fired {
		c.fired = true
		rival, err := c.store.GetByID(ctx, c.slotID)
		if err != nil {
			return err
		}
		rival.BookedCount++
		if err := c.store.UpdateRevisioned(ctx, rival); err != nil {
			return err
		}
		return storage.ErrRevisionConflict
	}
	return c.store.UpdateRevisioned(ctx, slot)
}
