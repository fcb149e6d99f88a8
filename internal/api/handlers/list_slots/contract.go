package list_slots

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

type SlotService interface {
	ListActive(ctx context.Context, siteID string) (*models.SlotListResponse, error)
	ListAll(ctx context.Context, siteID string) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
