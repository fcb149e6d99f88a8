// Package create_booking реализует сценарий создания бронирования:
// проверка слота, защита от пересечений у одного клиента, атомарный
// допуск через capacity reconciler и компенсация занятого места, если
// запись бронирования не удалась.
package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/events"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/capacity"
)

// UseCase use case для создания бронирования
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	reconciler   CapacityReconciler
	txManager    TransactionManager
	publisher    EventPublisher
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	reconciler CapacityReconciler,
	txManager TransactionManager,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		reconciler:   reconciler,
		txManager:    txManager,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет сценарий создания бронирования.
// Порядок существенный: место в слоте сначала занимается условной
// записью reconciler-а, и только потом пишется бронирование. Если
// запись бронирования не удалась, занятое место возвращается
// компенсирующим Release - клиент без бронирования место не держит.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: slot=%s, client=%s", req.SlotID, req.ClientEmail)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var result *domain.Booking
	var remaining int

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Получаем слот
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, storage.ErrSlotNotFound) {
				uc.logger.Warn("CreateBooking: slot id=%s not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("CreateBooking: failed to get slot id=%s: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
		}

		// Слот другой площадки для клиента неотличим от несуществующего
		if slot.SiteID != req.SiteID {
			uc.logger.Warn("CreateBooking: slot id=%s belongs to site id=%s, requested site id=%s",
				slot.ID, slot.SiteID, req.SiteID)
			return ErrSlotNotFound
		}

		// 3. Предварительная проверка статуса. Решающая проверка все
		// равно происходит внутри Reserve по свежему чтению.
		if !slot.IsActive() {
			uc.logger.Warn("CreateBooking: slot id=%s is %s", slot.ID, slot.Status)
			return ErrSlotUnavailable
		}

		// 4. Защита от двойного бронирования одного клиента
		existing, err := uc.bookingRepo.ListBySlot(txCtx, slot.ID, domain.ActiveStatuses)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to list bookings for slot id=%s: %v", slot.ID, err)
			return fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
		}
		if conflict := findOverlapping(existing, req.ClientEmail, slot.StartTime); conflict != nil {
			uc.logger.Warn("CreateBooking: client %s already holds booking id=%s on slot id=%s",
				req.ClientEmail, conflict.ID, slot.ID)
			return ErrOverlappingBooking
		}

		// 5. Атомарный допуск: проверка и инкремент одной условной записью
		res, err := uc.reconciler.Reserve(txCtx, slot.ID)
		if err != nil {
			return mapCapacityError(err)
		}
		remaining = res.Slot.RemainingCapacity()
		if res.Attempts > 1 {
			uc.logger.Info("CreateBooking: slot id=%s admitted after %d attempts", slot.ID, res.Attempts)
		}

		// 6. Собираем бронирование: окно времени наследуется от слота
		endTime, err := slot.StartTime.AddMinutes(slot.DurationMinutes)
		if err != nil {
			uc.releaseReserved(txCtx, slot.ID)
			return fmt.Errorf("%w: failed to compute end time: %v", ErrInternal, err)
		}

		booking := &domain.Booking{
			ID:          uuid.NewString(),
			SlotID:      slot.ID,
			SiteID:      slot.SiteID,
			OrgID:       slot.OrgID,
			ClientName:  strings.TrimSpace(req.ClientName),
			ClientEmail: req.ClientEmail,
			ClientPhone: req.ClientPhone,
			Note:        req.Note,
			StartTime:   slot.StartTime,
			EndTime:     endTime,
			Status:      domain.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		// 7. Пишем бронирование, при отказе возвращаем занятое место
		if err := uc.bookingRepo.Create(txCtx, booking); err != nil {
			uc.logger.Error("CreateBooking: failed to create booking on slot id=%s: %v", slot.ID, err)
			uc.releaseReserved(txCtx, slot.ID)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publishCreated(ctx, result)

	uc.logger.Info("CreateBooking: successfully created booking id=%s on slot=%s", result.ID, result.SlotID)
	return &Response{
		ID:                result.ID,
		SlotID:            result.SlotID,
		SiteID:            result.SiteID,
		OrgID:             result.OrgID,
		ClientName:        result.ClientName,
		ClientEmail:       result.ClientEmail,
		ClientPhone:       result.ClientPhone,
		Note:              result.Note,
		StartTime:         result.StartTime.String(),
		EndTime:           result.EndTime.String(),
		Status:            string(result.Status),
		RemainingCapacity: remaining,
		CreatedAt:         result.CreatedAt,
		UpdatedAt:         result.UpdatedAt,
	}, nil
}

// releaseReserved компенсирующее освобождение занятого места
func (uc *UseCase) releaseReserved(ctx context.Context, slotID string) {
	if err := uc.reconciler.Release(ctx, slotID); err != nil {
		uc.logger.Error("CreateBooking: compensating release failed for slot id=%s: %v", slotID, err)
	}
}

// mapCapacityError транслирует ошибки reconciler-а в ошибки usecase
func mapCapacityError(err error) error {
	switch {
	case errors.Is(err, capacity.ErrSlotNotFound):
		return ErrSlotNotFound
	case errors.Is(err, capacity.ErrSlotUnavailable):
		return ErrSlotUnavailable
	case errors.Is(err, capacity.ErrCapacityExceeded):
		return ErrCapacityExceeded
	default:
		return fmt.Errorf("%w: reserve failed: %v", ErrInternal, err)
	}
}

// publishCreated публикует событие о созданном бронировании best-effort
func (uc *UseCase) publishCreated(ctx context.Context, booking *domain.Booking) {
	event := events.Event{
		Type:       events.TypeBookingCreated,
		BookingID:  booking.ID,
		SlotID:     booking.SlotID,
		SiteID:     booking.SiteID,
		OrgID:      booking.OrgID,
		OccurredAt: uc.timeProvider.Now(),
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%s: %v", booking.ID, err)
	}
}
