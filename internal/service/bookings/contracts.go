package bookings

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListBySlot(ctx context.Context, slotID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)
	UpdateRevisioned(ctx context.Context, booking *domain.Booking) error
}

// CapacityReleaser освобождает место в слоте при отмене бронирования
type CapacityReleaser interface {
	Release(ctx context.Context, slotID string) error
}

// EventPublisher публикует события жизненного цикла бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
