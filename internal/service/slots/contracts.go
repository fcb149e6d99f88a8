package slots

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/events"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.AvailabilitySlot) error
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	ListActive(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error)
	ListAll(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error)
	UpdateRevisioned(ctx context.Context, slot *domain.AvailabilitySlot) error
}

// EventPublisher публикует события жизненного цикла слотов
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
