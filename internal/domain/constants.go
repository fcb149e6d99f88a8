package domain

// Business validation constants
const (
	MinCapacity        = 1
	MaxCapacity        = 1000
	MinDurationMinutes = 5
	MaxDurationMinutes = 480 // 8 hours
	MaxNoteLength      = 500
	MaxNameLength      = 200
	MaxEmailLength     = 320
)

// ActiveStatuses статусы бронирований, блокирующие пересекающиеся
// бронирования того же клиента на слоте
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// OccupyingStatuses статусы бронирований, учитываемые в BookedCount слота.
// no_show остается в списке: место было израсходовано, capacity не
// освобождается (освобождает только отмена).
var OccupyingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
}

// ValidBookingStatus returns true for a known booking status
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
