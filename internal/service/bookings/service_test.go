package bookings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/memdoc"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/storetest"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/capacity"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
)

type testLogger struct{}

func (testLogger) Info(format string, v ...interface{})  {}
func (testLogger) Warn(format string, v ...interface{})  {}
func (testLogger) Error(format string, v ...interface{}) {}

// countingReleaser считает фактические освобождения мест
type countingReleaser struct {
	inner    CapacityReleaser
	released atomic.Int64
}

func (c *countingReleaser) Release(ctx context.Context, slotID string) error {
	if err := c.inner.Release(ctx, slotID); err != nil {
		return err
	}
	c.released.Add(1)
	return nil
}

type fixture struct {
	svc      *Service
	slots    *memdoc.SlotStore
	bookings *memdoc.BookingStore
	releaser *countingReleaser
	slot     *domain.AvailabilitySlot
	booking  *domain.Booking
}

func newFixture(t *testing.T, slotCapacity int) *fixture {
	t.Helper()
	ctx := context.Background()

	slotStore := memdoc.NewSlotStore()
	bookingStore := memdoc.NewBookingStore()

	slot := storetest.NewSlot("site-1", slotCapacity)
	require.NoError(t, slotStore.Create(ctx, slot))

	rec := capacity.NewReconciler(slotStore, testLogger{}, nil)
	_, err := rec.Reserve(ctx, slot.ID)
	require.NoError(t, err)

	booking := storetest.NewBooking(slot, "client@example.com")
	require.NoError(t, bookingStore.Create(ctx, booking))

	releaser := &countingReleaser{inner: rec}
	svc := NewService(bookingStore, releaser, nil, testLogger{})

	return &fixture{
		svc:      svc,
		slots:    slotStore,
		bookings: bookingStore,
		releaser: releaser,
		slot:     slot,
		booking:  booking,
	}
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	got, err := f.svc.GetByID(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, f.booking.ID, got.ID)

	_, err = f.svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_ListBySlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	all, err := f.svc.ListBySlot(ctx, &models.ListBySlotRequest{SlotID: f.slot.ID})
	require.NoError(t, err)
	assert.Len(t, all.Bookings, 1)

	confirmed, err := f.svc.ListBySlot(ctx, &models.ListBySlotRequest{
		SlotID: f.slot.ID,
		Status: ptr.Ptr("confirmed"),
	})
	require.NoError(t, err)
	assert.Empty(t, confirmed.Bookings)

	_, err = f.svc.ListBySlot(ctx, &models.ListBySlotRequest{
		SlotID: f.slot.ID,
		Status: ptr.Ptr("unknown"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// Матрица допустимости переходов жизненного цикла
func TestService_LifecycleTransitions(t *testing.T) {
	ctx := context.Background()

	type op struct {
		name string
		call func(*Service, string) error
	}

	confirm := op{"confirm", func(s *Service, id string) error {
		_, err := s.Confirm(ctx, id)
		return err
	}}
	complete := op{"complete", func(s *Service, id string) error {
		_, err := s.Complete(ctx, id)
		return err
	}}
	cancel := op{"cancel", func(s *Service, id string) error {
		_, err := s.Cancel(ctx, id)
		return err
	}}
	noShow := op{"no_show", func(s *Service, id string) error {
		_, err := s.MarkNoShow(ctx, id)
		return err
	}}

	tests := []struct {
		from    domain.BookingStatus
		allowed []op
		denied  []op
	}{
		{domain.StatusPending, []op{confirm, cancel, noShow}, []op{complete}},
		{domain.StatusConfirmed, []op{complete, cancel, noShow}, []op{confirm}},
		{domain.StatusCompleted, nil, []op{confirm, complete, cancel, noShow}},
		{domain.StatusCancelled, nil, []op{confirm, complete, cancel, noShow}},
		{domain.StatusNoShow, nil, []op{confirm, complete, cancel, noShow}},
	}

	seed := func(t *testing.T, status domain.BookingStatus) (*fixture, string) {
		f := newFixture(t, 3)
		if status != domain.StatusPending {
			stored, err := f.bookings.GetByID(ctx, f.booking.ID)
			require.NoError(t, err)
			stored.Status = status
			require.NoError(t, f.bookings.UpdateRevisioned(ctx, stored))
		}
		return f, f.booking.ID
	}

	for _, tt := range tests {
		for _, o := range tt.allowed {
			t.Run(string(tt.from)+" allows "+o.name, func(t *testing.T) {
				f, id := seed(t, tt.from)
				assert.NoError(t, o.call(f.svc, id))
			})
		}
		for _, o := range tt.denied {
			t.Run(string(tt.from)+" denies "+o.name, func(t *testing.T) {
				f, id := seed(t, tt.from)
				assert.ErrorIs(t, o.call(f.svc, id), ErrInvalidState)
			})
		}
	}
}

func TestService_Confirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	resp, err := f.svc.Confirm(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.NotNil(t, resp.ConfirmedAt)
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("releases capacity once", func(t *testing.T) {
		f := newFixture(t, 3)

		resp, err := f.svc.Cancel(ctx, f.booking.ID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.NotNil(t, resp.CancelledAt)
		assert.Equal(t, int64(1), f.releaser.released.Load())

		slot, err := f.slots.GetByID(ctx, f.slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, slot.BookedCount)

		// Повторная отмена отклоняется и место не трогает
		_, err = f.svc.Cancel(ctx, f.booking.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, int64(1), f.releaser.released.Load())
	})

	t.Run("concurrent cancels release exactly once", func(t *testing.T) {
		const workers = 4

		f := newFixture(t, 3)

		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.svc.Cancel(ctx, f.booking.ID)
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInvalidState):
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, int64(1), f.releaser.released.Load())

		slot, err := f.slots.GetByID(ctx, f.slot.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, slot.BookedCount)
	})
}

func TestService_MarkNoShow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	resp, err := f.svc.MarkNoShow(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNoShow), resp.Status)

	// no_show не освобождает место
	assert.Equal(t, int64(0), f.releaser.released.Load())

	slot, err := f.slots.GetByID(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.BookedCount)
}

func TestService_UpdateStaffNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("updates notes", func(t *testing.T) {
		f := newFixture(t, 3)

		resp, err := f.svc.UpdateStaffNotes(ctx, f.booking.ID, &models.UpdateNotesRequest{
			StaffNotes: "client asked to reschedule next time",
		})
		require.NoError(t, err)
		require.NotNil(t, resp.StaffNotes)
		assert.Equal(t, "client asked to reschedule next time", *resp.StaffNotes)
	})

	t.Run("rejects oversized notes", func(t *testing.T) {
		f := newFixture(t, 3)

		long := make([]byte, domain.MaxNoteLength+1)
		for i := range long {
			long[i] = 'a'
		}

		_, err := f.svc.UpdateStaffNotes(ctx, f.booking.ID, &models.UpdateNotesRequest{
			StaffNotes: string(long),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
