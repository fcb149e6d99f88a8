package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/events"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings/models"
)

// transitionAttempts бюджет повторов условной записи перехода статуса
const transitionAttempts = 5

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo BookingRepository
	capacity    CapacityReleaser
	publisher   EventPublisher
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	capacity CapacityReleaser,
	publisher EventPublisher,
	logger Logger,
) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		bookingRepo: bookingRepo,
		capacity:    capacity,
		publisher:   publisher,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// ListBySlot получает бронирования слота, опционально фильтруя по статусу
func (s *Service) ListBySlot(ctx context.Context, req *models.ListBySlotRequest) (*models.BookingListResponse, error) {
	if req.SlotID == "" {
		return nil, fmt.Errorf("%w: slotId is required", ErrInvalidInput)
	}

	var statuses []domain.BookingStatus
	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		if !domain.ValidBookingStatus(status) {
			s.logger.Warn("ListBySlot: invalid status=%s for slot=%s", *req.Status, req.SlotID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		statuses = []domain.BookingStatus{status}
	}

	bookings, err := s.bookingRepo.ListBySlot(ctx, req.SlotID, statuses)
	if err != nil {
		s.logger.Error("ListBySlot: repository error for slot=%s: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: ListBySlot - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListBySlot: fetched %d bookings for slot=%s", len(bookings), req.SlotID)
	return models.FromDomainBookingList(bookings), nil
}

// Confirm переводит бронирование pending -> confirmed
func (s *Service) Confirm(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, id, events.TypeBookingConfirmed, func(b *domain.Booking, now time.Time) error {
		if !b.CanBeConfirmed() {
			return fmt.Errorf("%w: cannot confirm booking in status %s", ErrInvalidState, b.Status)
		}
		b.Status = domain.StatusConfirmed
		b.ConfirmedAt = &now
		return nil
	})
}

// Complete переводит бронирование confirmed -> completed
func (s *Service) Complete(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, id, events.TypeBookingCompleted, func(b *domain.Booking, _ time.Time) error {
		if !b.CanBeCompleted() {
			return fmt.Errorf("%w: cannot complete booking in status %s", ErrInvalidState, b.Status)
		}
		b.Status = domain.StatusCompleted
		return nil
	})
}

// Cancel отменяет бронирование и освобождает место в слоте. Переход
// статуса коммитится условной записью до декремента счетчика, поэтому
// конкурентные отмены одного бронирования освобождают место ровно один
// раз: вторая отмена видит терминальный статус и получает отказ.
func (s *Service) Cancel(ctx context.Context, id string) (*models.BookingResponse, error) {
	resp, err := s.transition(ctx, id, events.TypeBookingCancelled, func(b *domain.Booking, now time.Time) error {
		if !b.CanBeCancelled() {
			return fmt.Errorf("%w: cannot cancel booking in status %s", ErrInvalidState, b.Status)
		}
		b.Status = domain.StatusCancelled
		b.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.capacity.Release(ctx, resp.SlotID); err != nil {
		// Отмена уже закоммичена, счетчик догонит следующая сверка
		s.logger.Error("Cancel: failed to release capacity for slot=%s after cancelling booking id=%s: %v",
			resp.SlotID, id, err)
	}

	return resp, nil
}

// MarkNoShow переводит бронирование в no_show. Место НЕ освобождается:
// встреча была израсходована, пусть клиент и не пришел.
func (s *Service) MarkNoShow(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, id, events.TypeBookingNoShow, func(b *domain.Booking, _ time.Time) error {
		if !b.CanBeMarkedNoShow() {
			return fmt.Errorf("%w: cannot mark booking as no-show in status %s", ErrInvalidState, b.Status)
		}
		b.Status = domain.StatusNoShow
		return nil
	})
}

// UpdateStaffNotes обновляет служебные заметки - единственное
// изменяемое после создания поле бронирования помимо статуса
func (s *Service) UpdateStaffNotes(ctx context.Context, id string, req *models.UpdateNotesRequest) (*models.BookingResponse, error) {
	if len(req.StaffNotes) > domain.MaxNoteLength {
		return nil, fmt.Errorf("%w: staffNotes must not exceed %d characters", ErrInvalidInput, domain.MaxNoteLength)
	}

	return s.transition(ctx, id, "", func(b *domain.Booking, _ time.Time) error {
		notes := req.StaffNotes
		b.StaffNotes = &notes
		return nil
	})
}

// transition выполняет переход бронирования через условную запись с
// ограниченным числом повторов. При конфликте ревизии бронирование
// перечитывается и допустимость перехода проверяется заново.
func (s *Service) transition(
	ctx context.Context,
	id string,
	eventType string,
	mutate func(b *domain.Booking, now time.Time) error,
) (*models.BookingResponse, error) {
	for attempt := 1; attempt <= transitionAttempts; attempt++ {
		booking, err := s.bookingRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrBookingNotFound) {
				s.logger.Warn("transition: booking id=%s not found", id)
				return nil, ErrBookingNotFound
			}
			s.logger.Error("transition: repository error for booking id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: transition - repository error: %v", ErrInternal, err)
		}

		now := time.Now().UTC()
		if err := mutate(booking, now); err != nil {
			s.logger.Warn("transition: rejected for booking id=%s: %v", id, err)
			return nil, err
		}
		booking.UpdatedAt = now

		err = s.bookingRepo.UpdateRevisioned(ctx, booking)
		if err == nil {
			if eventType != "" {
				s.publishEvent(ctx, eventType, booking)
			}
			s.logger.Info("transition: booking id=%s now %s", id, booking.Status)
			return models.FromDomainBooking(booking), nil
		}
		if !errors.Is(err, storage.ErrRevisionConflict) {
			s.logger.Error("transition: repository error for booking id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: transition - repository error: %v", ErrInternal, err)
		}

		// Конкурентная запись успела первой - перечитываем и повторяем
		s.logger.Warn("transition: revision conflict on booking id=%s, attempt %d/%d", id, attempt, transitionAttempts)
	}

	return nil, fmt.Errorf("%w: transition - retry budget exhausted for booking %s", ErrInternal, id)
}

// publishEvent публикует событие жизненного цикла бронирования best-effort
func (s *Service) publishEvent(ctx context.Context, eventType string, booking *domain.Booking) {
	event := events.Event{
		Type:       eventType,
		BookingID:  booking.ID,
		SlotID:     booking.SlotID,
		SiteID:     booking.SiteID,
		OrgID:      booking.OrgID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publishEvent: failed to publish %s for booking id=%s: %v", eventType, booking.ID, err)
	}
}
