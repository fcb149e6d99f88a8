// Package memdoc реализует storage adapter в памяти с теми же
// ревизионными CAS семантиками, что и у боевых бэкендов. Используется
// в unit-тестах и как backend для локального запуска без внешних
// зависимостей.
package memdoc

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
)

// SlotStore потокобезопасное in-memory хранилище слотов
type SlotStore struct {
	mu    sync.RWMutex
	slots map[string]*domain.AvailabilitySlot
}

// NewSlotStore создает пустое in-memory хранилище слотов
func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[string]*domain.AvailabilitySlot)}
}

func (s *SlotStore) Create(_ context.Context, slot *domain.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[slot.ID]; ok {
		return storage.ErrAlreadyExists
	}

	slot.Rev = 1
	s.slots[slot.ID] = copySlot(slot)
	return nil
}

func (s *SlotStore) GetByID(_ context.Context, id string) (*domain.AvailabilitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, storage.ErrSlotNotFound
	}
	return copySlot(slot), nil
}

func (s *SlotStore) ListActive(_ context.Context, siteID string) ([]*domain.AvailabilitySlot, error) {
	return s.list(siteID, true), nil
}

func (s *SlotStore) ListAll(_ context.Context, siteID string) ([]*domain.AvailabilitySlot, error) {
	return s.list(siteID, false), nil
}

func (s *SlotStore) list(siteID string, onlyActive bool) []*domain.AvailabilitySlot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]*domain.AvailabilitySlot, 0)
	for _, slot := range s.slots {
		if slot.SiteID != siteID {
			continue
		}
		if onlyActive && slot.Status != domain.SlotStatusActive {
			continue
		}
		slots = append(slots, copySlot(slot))
	}
	return slots
}

func (s *SlotStore) UpdateRevisioned(_ context.Context, slot *domain.AvailabilitySlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.slots[slot.ID]
	if !ok {
		return storage.ErrSlotNotFound
	}
	if stored.Rev != slot.Rev {
		return storage.ErrRevisionConflict
	}

	slot.Rev++
	s.slots[slot.ID] = copySlot(slot)
	return nil
}

// BookingStore потокобезопасное in-memory хранилище бронирований
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

// NewBookingStore создает пустое in-memory хранилище бронирований
func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[string]*domain.Booking)}
}

func (s *BookingStore) Create(_ context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[booking.ID]; ok {
		return storage.ErrAlreadyExists
	}

	booking.Rev = 1
	s.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (s *BookingStore) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	return copyBooking(booking), nil
}

func (s *BookingStore) ListBySlot(_ context.Context, slotID string, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[domain.BookingStatus]struct{}, len(statuses))
	for _, st := range statuses {
		wanted[st] = struct{}{}
	}

	bookings := make([]*domain.Booking, 0)
	for _, booking := range s.bookings {
		if booking.SlotID != slotID {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[booking.Status]; !ok {
				continue
			}
		}
		bookings = append(bookings, copyBooking(booking))
	}
	return bookings, nil
}

func (s *BookingStore) UpdateRevisioned(_ context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[booking.ID]
	if !ok {
		return storage.ErrBookingNotFound
	}
	if stored.Rev != booking.Rev {
		return storage.ErrRevisionConflict
	}

	booking.Rev++
	s.bookings[booking.ID] = copyBooking(booking)
	return nil
}

// copySlot глубокая копия, чтобы вызывающий код не делил память с хранилищем
func copySlot(s *domain.AvailabilitySlot) *domain.AvailabilitySlot {
	cp := *s
	if s.DayOfWeek != nil {
		day := *s.DayOfWeek
		cp.DayOfWeek = &day
	}
	if s.SpecificDate != nil {
		date := *s.SpecificDate
		cp.SpecificDate = &date
	}
	if s.RecurrenceEndDate != nil {
		date := *s.RecurrenceEndDate
		cp.RecurrenceEndDate = &date
	}
	if s.BufferMinutes != nil {
		buf := *s.BufferMinutes
		cp.BufferMinutes = &buf
	}
	return &cp
}

func copyBooking(b *domain.Booking) *domain.Booking {
	cp := *b
	if b.ClientPhone != nil {
		phone := *b.ClientPhone
		cp.ClientPhone = &phone
	}
	if b.Note != nil {
		note := *b.Note
		cp.Note = &note
	}
	if b.StaffNotes != nil {
		notes := *b.StaffNotes
		cp.StaffNotes = &notes
	}
	if b.ConfirmedAt != nil {
		at := *b.ConfirmedAt
		cp.ConfirmedAt = &at
	}
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		cp.CancelledAt = &at
	}
	return &cp
}
