// Package events описывает доменные события жизненного цикла
// бронирований и слотов. Публикация best-effort: отказ брокера не
// откатывает уже закоммиченную запись.
package events

import (
	"context"
	"time"
)

// Типы событий. Routing key в topic exchange совпадает с типом.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCompleted = "booking.completed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingNoShow    = "booking.no_show"
	TypeSlotCreated      = "slot.created"
	TypeSlotDeactivated  = "slot.deactivated"
)

// Event доменное событие
type Event struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId,omitempty"`
	SlotID     string    `json:"slotId"`
	SiteID     string    `json:"siteId"`
	OrgID      string    `json:"orgId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher публикует доменные события
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher заглушка для конфигураций без брокера
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
