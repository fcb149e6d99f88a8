package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/events"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

// deactivateAttempts бюджет повторов условной записи при деактивации
const deactivateAttempts = 5

// Service сервис для работы со слотами доступности
type Service struct {
	slotRepo  SlotRepository
	publisher EventPublisher
	logger    Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(slotRepo SlotRepository, publisher EventPublisher, logger Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		slotRepo:  slotRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create создает новый слот доступности
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Create: creating slot for site=%s org=%s", req.SiteID, req.OrgID)

	slot, err := validateCreateRequest(req)
	if err != nil {
		s.logger.Warn("Create: validation failed for site=%s: %v", req.SiteID, err)
		return nil, err
	}

	now := time.Now().UTC()
	slot.ID = uuid.NewString()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		s.logger.Error("Create: repository error for site=%s: %v", req.SiteID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.publishEvent(ctx, events.TypeSlotCreated, slot)

	s.logger.Info("Create: successfully created slot id=%s for site=%s", slot.ID, slot.SiteID)
	return models.FromDomainSlot(slot), nil
}

// GetByID получает слот по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.SlotResponse, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			s.logger.Warn("GetByID: slot id=%s not found", id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("GetByID: repository error for slot id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlot(slot), nil
}

// ListActive получает активные слоты площадки
func (s *Service) ListActive(ctx context.Context, siteID string) (*models.SlotListResponse, error) {
	if siteID == "" {
		return nil, fmt.Errorf("%w: siteId is required", ErrInvalidInput)
	}

	slots, err := s.slotRepo.ListActive(ctx, siteID)
	if err != nil {
		s.logger.Error("ListActive: repository error for site=%s: %v", siteID, err)
		return nil, fmt.Errorf("%w: ListActive - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListActive: fetched %d active slots for site=%s", len(slots), siteID)
	return models.FromDomainSlotList(slots), nil
}

// ListAll получает все слоты площадки, включая неактивные
func (s *Service) ListAll(ctx context.Context, siteID string) (*models.SlotListResponse, error) {
	if siteID == "" {
		return nil, fmt.Errorf("%w: siteId is required", ErrInvalidInput)
	}

	slots, err := s.slotRepo.ListAll(ctx, siteID)
	if err != nil {
		s.logger.Error("ListAll: repository error for site=%s: %v", siteID, err)
		return nil, fmt.Errorf("%w: ListAll - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlotList(slots), nil
}

// Deactivate переводит слот в состояние inactive. Операция идемпотентна:
// повторная деактивация уже неактивного слота успешна. Существующие
// бронирования слота не трогаются - деактивация закрывает только
// допуск новых.
func (s *Service) Deactivate(ctx context.Context, id string) (*models.SlotResponse, error) {
	s.logger.Info("Deactivate: deactivating slot id=%s", id)

	for attempt := 1; attempt <= deactivateAttempts; attempt++ {
		slot, err := s.slotRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrSlotNotFound) {
				s.logger.Warn("Deactivate: slot id=%s not found", id)
				return nil, ErrSlotNotFound
			}
			s.logger.Error("Deactivate: repository error for slot id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
		}

		if slot.Status != domain.SlotStatusActive {
			s.logger.Info("Deactivate: slot id=%s already %s", id, slot.Status)
			return models.FromDomainSlot(slot), nil
		}

		slot.Status = domain.SlotStatusInactive
		slot.UpdatedAt = time.Now().UTC()

		err = s.slotRepo.UpdateRevisioned(ctx, slot)
		if err == nil {
			s.publishEvent(ctx, events.TypeSlotDeactivated, slot)
			s.logger.Info("Deactivate: successfully deactivated slot id=%s", id)
			return models.FromDomainSlot(slot), nil
		}
		if !errors.Is(err, storage.ErrRevisionConflict) {
			s.logger.Error("Deactivate: repository error for slot id=%s: %v", id, err)
			return nil, fmt.Errorf("%w: Deactivate - repository error: %v", ErrInternal, err)
		}

		// Конкурентная запись успела первой - перечитываем и повторяем
		s.logger.Warn("Deactivate: revision conflict on slot id=%s, attempt %d/%d", id, attempt, deactivateAttempts)
	}

	return nil, fmt.Errorf("%w: Deactivate - retry budget exhausted for slot %s", ErrInternal, id)
}

// publishEvent публикует событие жизненного цикла слота best-effort
func (s *Service) publishEvent(ctx context.Context, eventType string, slot *domain.AvailabilitySlot) {
	event := events.Event{
		Type:       eventType,
		SlotID:     slot.ID,
		SiteID:     slot.SiteID,
		OrgID:      slot.OrgID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publishEvent: failed to publish %s for slot id=%s: %v", eventType, slot.ID, err)
	}
}
