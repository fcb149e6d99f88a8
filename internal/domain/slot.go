package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SlotStatus represents the lifecycle state of an availability slot
type SlotStatus string

const (
	SlotStatusActive    SlotStatus = "active"
	SlotStatusInactive  SlotStatus = "inactive"
	SlotStatusCancelled SlotStatus = "cancelled"
)

// Recurrence represents how often a slot repeats
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceOnce    Recurrence = "once"
)

// AvailabilitySlot represents a capacity-bounded, time-bounded unit of bookable availability
//
// BookedCount - единственное разделяемое изменяемое состояние подсистемы.
// Инвариант: 0 <= BookedCount <= Capacity. Изменяется ТОЛЬКО через
// capacity.Reconciler (условная запись по Rev), любой другой
// read-modify-write этого поля - ошибка проектирования.
type AvailabilitySlot struct {
	ID     string
	OrgID  string
	SiteID string

	StartTime types.TimeString
	EndTime   types.TimeString

	DayOfWeek         *time.Weekday // обязателен при Recurrence = weekly
	Recurrence        Recurrence
	SpecificDate      *types.Date // обязателен при Recurrence = once
	RecurrenceEndDate *types.Date

	Capacity        int
	BookedCount     int
	DurationMinutes int
	BufferMinutes   *int

	Status SlotStatus

	// Rev - optimistic-concurrency token. Инкрементируется хранилищем
	// при каждой успешной условной записи.
	Rev int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the slot accepts bookings
func (s *AvailabilitySlot) IsActive() bool {
	return s.Status == SlotStatusActive
}

// HasRemainingCapacity returns true if at least one seat is free
func (s *AvailabilitySlot) HasRemainingCapacity() bool {
	return s.BookedCount < s.Capacity
}

// IsAvailable returns true if the slot is active and has a free seat.
// Advisory only: admission is re-checked at write time by the capacity
// reconciler, this must never be the authority for admitting a booking.
func (s *AvailabilitySlot) IsAvailable() bool {
	return s.IsActive() && s.HasRemainingCapacity()
}

// RemainingCapacity returns the number of free seats
func (s *AvailabilitySlot) RemainingCapacity() int {
	remaining := s.Capacity - s.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ValidSlotStatus returns true for a known slot status
func ValidSlotStatus(s SlotStatus) bool {
	switch s {
	case SlotStatusActive, SlotStatusInactive, SlotStatusCancelled:
		return true
	}
	return false
}

// ValidRecurrence returns true for a known recurrence kind
func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceOnce:
		return true
	}
	return false
}
