package create_booking

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
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/capacity"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
)

type testLogger struct{}

func (testLogger) Info(format string, v ...interface{})  {}
func (testLogger) Warn(format string, v ...interface{})  {}
func (testLogger) Error(format string, v ...interface{}) {}

type fixture struct {
	uc       *UseCase
	slots    *memdoc.SlotStore
	bookings *memdoc.BookingStore
	slot     *domain.AvailabilitySlot
}

func newFixture(t *testing.T, slotCapacity int) *fixture {
	t.Helper()

	slotStore := memdoc.NewSlotStore()
	bookingStore := memdoc.NewBookingStore()

	slot := storetest.NewSlot("site-1", slotCapacity)
	require.NoError(t, slotStore.Create(context.Background(), slot))

	rec := capacity.NewReconciler(slotStore, testLogger{}, nil)
	uc := NewUseCase(slotStore, bookingStore, rec, storage.NopTxManager{}, nil, testLogger{})

	return &fixture{uc: uc, slots: slotStore, bookings: bookingStore, slot: slot}
}

func validRequest(slotID, email string) *Request {
	return &Request{
		SiteID:      "site-1",
		SlotID:      slotID,
		ClientName:  "Test Client",
		ClientEmail: email,
	}
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending booking", func(t *testing.T) {
		f := newFixture(t, 2)

		resp, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "client@example.com"))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, string(domain.StatusPending), resp.Status)
		assert.Equal(t, f.slot.StartTime.String(), resp.StartTime)
		assert.Equal(t, "11:00", resp.EndTime)
		assert.Equal(t, 1, resp.RemainingCapacity)

		slot, err := f.slots.GetByID(ctx, f.slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, slot.BookedCount)

		stored, err := f.bookings.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, f.slot.ID, stored.SlotID)
	})

	t.Run("unknown slot", func(t *testing.T) {
		f := newFixture(t, 2)

		_, err := f.uc.Execute(ctx, validRequest("missing", "client@example.com"))
		assert.ErrorIs(t, err, ErrSlotNotFound)
	})

	t.Run("slot of another site", func(t *testing.T) {
		f := newFixture(t, 2)

		// Существующий слот под чужой площадкой неотличим от несуществующего
		req := validRequest(f.slot.ID, "client@example.com")
		req.SiteID = "site-2"

		_, err := f.uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrSlotNotFound)

		slot, err := f.slots.GetByID(ctx, f.slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, slot.BookedCount)
	})

	t.Run("inactive slot", func(t *testing.T) {
		f := newFixture(t, 2)

		f.slot.Status = domain.SlotStatusInactive
		require.NoError(t, f.slots.UpdateRevisioned(ctx, f.slot))

		_, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "client@example.com"))
		assert.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("full slot", func(t *testing.T) {
		f := newFixture(t, 1)

		_, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "first@example.com"))
		require.NoError(t, err)

		_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "second@example.com"))
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("same client overlap", func(t *testing.T) {
		f := newFixture(t, 3)

		_, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "client@example.com"))
		require.NoError(t, err)

		_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "Client@Example.com"))
		assert.ErrorIs(t, err, ErrOverlappingBooking)

		// Отмененное бронирование не блокирует повторную запись
		all, err := f.bookings.ListBySlot(ctx, f.slot.ID, nil)
		require.NoError(t, err)
		require.Len(t, all, 1)
		all[0].Status = domain.StatusCancelled
		require.NoError(t, f.bookings.UpdateRevisioned(ctx, all[0]))

		_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "client@example.com"))
		assert.NoError(t, err)
	})

	t.Run("validation failures", func(t *testing.T) {
		f := newFixture(t, 2)

		tests := []struct {
			name   string
			mutate func(*Request)
		}{
			{"missing site id", func(r *Request) { r.SiteID = "" }},
			{"missing slot id", func(r *Request) { r.SlotID = "" }},
			{"missing name", func(r *Request) { r.ClientName = "  " }},
			{"missing email", func(r *Request) { r.ClientEmail = "" }},
			{"email without at", func(r *Request) { r.ClientEmail = "not-an-email" }},
			{"email with empty local part", func(r *Request) { r.ClientEmail = "@example.com" }},
			{"oversized note", func(r *Request) {
				long := make([]byte, domain.MaxNoteLength+1)
				for i := range long {
					long[i] = 'x'
				}
				r.Note = ptr.Ptr(string(long))
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := validRequest(f.slot.ID, "client@example.com")
				tt.mutate(req)

				_, err := f.uc.Execute(ctx, req)
				assert.ErrorIs(t, err, ErrInvalidInput)
			})
		}
	})
}

// Слот на два места принимает два бронирования разных клиентов,
// третий клиент получает отказ по вместимости
func TestUseCase_TwoSeatsThreeClients(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	first, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "first@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.RemainingCapacity)

	second, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "second@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 0, second.RemainingCapacity)

	_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "third@example.com"))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	slot, err := f.slots.GetByID(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.BookedCount)
}

// Полный цикл на слоте с двумя местами: заполнение, отказ третьему,
// отмена освобождает место, и новый клиент снова проходит
func TestUseCase_RebookAfterCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)

	rec := capacity.NewReconciler(f.slots, testLogger{}, nil)
	bookingSvc := bookings.NewService(f.bookings, rec, nil, testLogger{})

	first, err := f.uc.Execute(ctx, validRequest(f.slot.ID, "first@example.com"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "second@example.com"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "third@example.com"))
	require.ErrorIs(t, err, ErrCapacityExceeded)

	// Отмена возвращает место в слот
	_, err = bookingSvc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	slot, err := f.slots.GetByID(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.BookedCount)

	// Освободившееся место достается новому клиенту
	_, err = f.uc.Execute(ctx, validRequest(f.slot.ID, "third@example.com"))
	require.NoError(t, err)

	slot, err = f.slots.GetByID(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.BookedCount)
}

// Конкурентные клиенты на слоте с одним местом: ровно один проходит
func TestUseCase_ConcurrentClients(t *testing.T) {
	const workers = 3

	ctx := context.Background()
	f := newFixture(t, 1)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(ctx, validRequest(f.slot.ID, emails[i]))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityExceeded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	slot, err := f.slots.GetByID(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.BookedCount)

	bookings, err := f.bookings.ListBySlot(ctx, f.slot.ID, nil)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

// failingBookingStore отклоняет запись бронирования
type failingBookingStore struct {
	*memdoc.BookingStore
}

func (f *failingBookingStore) Create(context.Context, *domain.Booking) error {
	return errors.New("disk on fire")
}

// Отказ записи бронирования возвращает занятое место
func TestUseCase_CompensatesOnPersistFailure(t *testing.T) {
	ctx := context.Background()

	slotStore := memdoc.NewSlotStore()
	slot := storetest.NewSlot("site-1", 2)
	require.NoError(t, slotStore.Create(ctx, slot))

	rec := capacity.NewReconciler(slotStore, testLogger{}, nil)
	uc := NewUseCase(
		slotStore,
		&failingBookingStore{BookingStore: memdoc.NewBookingStore()},
		rec,
		storage.NopTxManager{},
		nil,
		testLogger{},
	)

	_, err := uc.Execute(ctx, validRequest(slot.ID, "client@example.com"))
	assert.ErrorIs(t, err, ErrInternal)

	got, err := slotStore.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.BookedCount)
}
