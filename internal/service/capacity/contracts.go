package capacity

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// SlotStore доступ к слотам, нужный reconciler-у
type SlotStore interface {
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	UpdateRevisioned(ctx context.Context, slot *domain.AvailabilitySlot) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsCollector счетчики повторов условной записи
type MetricsCollector interface {
	IncCapacityRetry(op string)
}

// NopMetrics коллектор-заглушка
type NopMetrics struct{}

func (NopMetrics) IncCapacityRetry(string) {}
