package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

func TestBooking_Transitions(t *testing.T) {
	tests := []struct {
		status       BookingStatus
		canConfirm   bool
		canComplete  bool
		canCancel    bool
		canNoShow    bool
		terminal     bool
	}{
		{StatusPending, true, false, true, true, false},
		{StatusConfirmed, false, true, true, true, false},
		{StatusCompleted, false, false, false, false, true},
		{StatusCancelled, false, false, false, false, true},
		{StatusNoShow, false, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			b := &Booking{Status: tt.status}

			assert.Equal(t, tt.canConfirm, b.CanBeConfirmed())
			assert.Equal(t, tt.canComplete, b.CanBeCompleted())
			assert.Equal(t, tt.canCancel, b.CanBeCancelled())
			assert.Equal(t, tt.canNoShow, b.CanBeMarkedNoShow())
			assert.Equal(t, tt.terminal, b.IsTerminal())
		})
	}
}

func TestBooking_Occupies(t *testing.T) {
	// Место освобождает только отмена, no_show остается учтенным
	assert.True(t, (&Booking{Status: StatusPending}).Occupies())
	assert.True(t, (&Booking{Status: StatusConfirmed}).Occupies())
	assert.True(t, (&Booking{Status: StatusCompleted}).Occupies())
	assert.True(t, (&Booking{Status: StatusNoShow}).Occupies())
	assert.False(t, (&Booking{Status: StatusCancelled}).Occupies())
}

func TestBooking_Overlaps(t *testing.T) {
	b := &Booking{
		StartTime: types.TimeString("10:00"),
		EndTime:   types.TimeString("11:00"),
	}

	assert.True(t, b.Overlaps("10:00"))
	assert.True(t, b.Overlaps("10:30"))
	assert.False(t, b.Overlaps("11:00"))
	assert.False(t, b.Overlaps("09:59"))
}

func TestSlot_Capacity(t *testing.T) {
	slot := &AvailabilitySlot{Status: SlotStatusActive, Capacity: 2, BookedCount: 0}
	assert.True(t, slot.IsAvailable())
	assert.Equal(t, 2, slot.RemainingCapacity())

	slot.BookedCount = 2
	assert.False(t, slot.HasRemainingCapacity())
	assert.False(t, slot.IsAvailable())
	assert.Equal(t, 0, slot.RemainingCapacity())

	slot.BookedCount = 1
	slot.Status = SlotStatusInactive
	assert.True(t, slot.HasRemainingCapacity())
	assert.False(t, slot.IsAvailable())
}
