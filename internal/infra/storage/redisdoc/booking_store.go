package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
)

// BookingStore документная реализация storage.BookingStore
type BookingStore struct {
	store
}

// NewBookingStore создает документное хранилище бронирований
func NewBookingStore(rdb *redis.Client, opts ...Option) *BookingStore {
	return &BookingStore{store: newStore(rdb, opts...)}
}

// Create сохраняет новое бронирование (SETNX + индекс слота)
func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Rev = 1

	body, err := json.Marshal(bookingToDoc(booking))
	if err != nil {
		return fmt.Errorf("redisdoc: marshal booking: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.bookingKey(booking.ID), body, 0).Result()
	if err != nil {
		return fmt.Errorf("redisdoc: create booking: %w", err)
	}
	if !ok {
		return storage.ErrAlreadyExists
	}

	if err := s.rdb.SAdd(ctx, s.slotBookingsKey(booking.SlotID), booking.ID).Err(); err != nil {
		return fmt.Errorf("redisdoc: index booking: %w", err)
	}

	return nil
}

// GetByID точечное чтение бронирования
func (s *BookingStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	raw, err := s.rdb.Get(ctx, s.bookingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisdoc: get booking: %w", err)
	}

	var doc bookingDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("redisdoc: unmarshal booking: %w", err)
	}

	return docToBooking(&doc), nil
}

// ListBySlot возвращает бронирования слота с клиентской фильтрацией по статусам
func (s *BookingStore) ListBySlot(ctx context.Context, slotID string, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	ids, err := s.rdb.SMembers(ctx, s.slotBookingsKey(slotID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisdoc: list booking ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Booking{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.bookingKey(id)
	}

	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redisdoc: mget bookings: %w", err)
	}

	wanted := make(map[domain.BookingStatus]struct{}, len(statuses))
	for _, st := range statuses {
		wanted[st] = struct{}{}
	}

	bookings := make([]*domain.Booking, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var doc bookingDoc
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, fmt.Errorf("redisdoc: unmarshal booking: %w", err)
		}
		if len(wanted) > 0 {
			if _, ok := wanted[domain.BookingStatus(doc.Status)]; !ok {
				continue
			}
		}
		bookings = append(bookings, docToBooking(&doc))
	}

	return bookings, nil
}

// UpdateRevisioned условная запись бронирования через Lua CAS
func (s *BookingStore) UpdateRevisioned(ctx context.Context, booking *domain.Booking) error {
	next := *booking
	next.Rev = booking.Rev + 1

	body, err := json.Marshal(bookingToDoc(&next))
	if err != nil {
		return fmt.Errorf("redisdoc: marshal booking: %w", err)
	}

	res, err := s.cas(ctx, s.bookingKey(booking.ID), booking.Rev, body)
	if err != nil {
		return err
	}

	switch res {
	case casOK:
		booking.Rev++
		return nil
	case casConflict:
		return storage.ErrRevisionConflict
	case casMissing:
		return storage.ErrBookingNotFound
	default:
		return fmt.Errorf("%w: unexpected result %d", ErrScript, res)
	}
}
