package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SiteID == "" {
		return fmt.Errorf("%w: siteId is required", ErrInvalidInput)
	}
	if req.SlotID == "" {
		return fmt.Errorf("%w: slotId is required", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.ClientName)
	if name == "" {
		return fmt.Errorf("%w: clientName is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxNameLength {
		return fmt.Errorf("%w: clientName must not exceed %d characters", ErrInvalidInput, domain.MaxNameLength)
	}

	if err := validateEmail(req.ClientEmail); err != nil {
		return err
	}

	if req.Note != nil && len(*req.Note) > domain.MaxNoteLength {
		return fmt.Errorf("%w: note must not exceed %d characters", ErrInvalidInput, domain.MaxNoteLength)
	}

	return nil
}

// validateEmail проверяет минимальную форму адреса: local@domain
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: clientEmail is required", ErrInvalidInput)
	}
	if len(email) > domain.MaxEmailLength {
		return fmt.Errorf("%w: clientEmail must not exceed %d characters", ErrInvalidInput, domain.MaxEmailLength)
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: clientEmail is malformed", ErrInvalidInput)
	}
	if strings.ContainsAny(email, " \t\n") {
		return fmt.Errorf("%w: clientEmail is malformed", ErrInvalidInput)
	}

	return nil
}

// findOverlapping ищет активное бронирование того же клиента,
// пересекающееся по времени с запрошенным стартом
func findOverlapping(bookings []*domain.Booking, clientEmail string, start types.TimeString) *domain.Booking {
	for _, booking := range bookings {
		if !booking.IsActive() {
			continue
		}
		if !strings.EqualFold(booking.ClientEmail, clientEmail) {
			continue
		}
		if booking.Overlaps(start) {
			return booking
		}
	}
	return nil
}
