package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking represents a client's claim against one unit of a slot's capacity
type Booking struct {
	ID     string
	SlotID string
	SiteID string
	OrgID  string

	// Клиентские данные неизменяемы после создания
	ClientName  string
	ClientEmail string
	ClientPhone *string
	Note        *string

	// StaffNotes - единственное изменяемое после создания поле клиентской части
	StaffNotes *string

	// Временное окно вычисляется в момент создания из слота:
	// StartTime = slot.StartTime, EndTime = StartTime + slot.DurationMinutes
	StartTime types.TimeString
	EndTime   types.TimeString

	Status BookingStatus

	// Rev - optimistic-concurrency token хранилища
	Rev int64

	ConfirmedAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanBeConfirmed returns true if the booking may transition to confirmed
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusPending
}

// CanBeCompleted returns true if the booking may transition to completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking may transition to cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeMarkedNoShow returns true if the booking may transition to no_show
func (b *Booking) CanBeMarkedNoShow() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal returns true if no further lifecycle transition is legal
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled || b.Status == StatusNoShow
}

// IsActive returns true if the booking blocks same-client overlapping bookings
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Occupies returns true if the booking counts against slot capacity.
// No-show retains its seat: the appointment was consumed even though
// the client never arrived, so only cancellation releases capacity.
func (b *Booking) Occupies() bool {
	return b.Status != StatusCancelled
}

// Overlaps проверяет, что время start попадает в окно бронирования [StartTime, EndTime)
func (b *Booking) Overlaps(start types.TimeString) bool {
	return !start.IsBefore(b.StartTime) && start.IsBefore(b.EndTime)
}
