package slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// validateCreateRequest проверяет запрос и собирает доменную модель слота.
// Все нарушения заворачиваются в ErrInvalidInput.
func validateCreateRequest(req *models.CreateSlotRequest) (*domain.AvailabilitySlot, error) {
	if req.OrgID == "" {
		return nil, fmt.Errorf("%w: orgId is required", ErrInvalidInput)
	}
	if req.SiteID == "" {
		return nil, fmt.Errorf("%w: siteId is required", ErrInvalidInput)
	}

	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	endTime, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: endTime: %v", ErrInvalidInput, err)
	}
	if !startTime.IsBefore(endTime) {
		return nil, fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}

	recurrence := domain.Recurrence(req.Recurrence)
	if !domain.ValidRecurrence(recurrence) {
		return nil, fmt.Errorf("%w: unknown recurrence %q", ErrInvalidInput, req.Recurrence)
	}

	// dayOfWeek имеет смысл только для еженедельных слотов
	var dayOfWeek *time.Weekday
	if recurrence == domain.RecurrenceWeekly {
		if req.DayOfWeek == nil {
			return nil, fmt.Errorf("%w: dayOfWeek is required for weekly recurrence", ErrInvalidInput)
		}
		if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: dayOfWeek must be between 0 and 6", ErrInvalidInput)
		}
		day := time.Weekday(*req.DayOfWeek)
		dayOfWeek = &day
	} else if req.DayOfWeek != nil {
		return nil, fmt.Errorf("%w: dayOfWeek is only valid for weekly recurrence", ErrInvalidInput)
	}

	// specificDate имеет смысл только для одноразовых слотов
	var specificDate *types.Date
	if recurrence == domain.RecurrenceOnce {
		if req.SpecificDate == nil {
			return nil, fmt.Errorf("%w: specificDate is required for one-time slots", ErrInvalidInput)
		}
		date, err := types.NewDateFromString(*req.SpecificDate)
		if err != nil {
			return nil, fmt.Errorf("%w: specificDate: %v", ErrInvalidInput, err)
		}
		specificDate = &date
	} else if req.SpecificDate != nil {
		return nil, fmt.Errorf("%w: specificDate is only valid for one-time slots", ErrInvalidInput)
	}

	var recurrenceEndDate *types.Date
	if req.RecurrenceEndDate != nil {
		if recurrence == domain.RecurrenceOnce {
			return nil, fmt.Errorf("%w: recurrenceEndDate is not valid for one-time slots", ErrInvalidInput)
		}
		date, err := types.NewDateFromString(*req.RecurrenceEndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: recurrenceEndDate: %v", ErrInvalidInput, err)
		}
		recurrenceEndDate = &date
	}

	if req.Capacity < domain.MinCapacity || req.Capacity > domain.MaxCapacity {
		return nil, fmt.Errorf("%w: capacity must be between %d and %d",
			ErrInvalidInput, domain.MinCapacity, domain.MaxCapacity)
	}
	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		return nil, fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if req.BufferMinutes != nil && *req.BufferMinutes < 0 {
		return nil, fmt.Errorf("%w: bufferMinutes must not be negative", ErrInvalidInput)
	}

	return &domain.AvailabilitySlot{
		OrgID:             req.OrgID,
		SiteID:            req.SiteID,
		StartTime:         startTime,
		EndTime:           endTime,
		DayOfWeek:         dayOfWeek,
		Recurrence:        recurrence,
		SpecificDate:      specificDate,
		RecurrenceEndDate: recurrenceEndDate,
		Capacity:          req.Capacity,
		DurationMinutes:   req.DurationMinutes,
		BufferMinutes:     req.BufferMinutes,
		Status:            domain.SlotStatusActive,
	}, nil
}
