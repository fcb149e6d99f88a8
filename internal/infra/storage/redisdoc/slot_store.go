package redisdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
)

// SlotStore документная реализация storage.SlotStore
type SlotStore struct {
	store
}

// NewSlotStore создает документное хранилище слотов
func NewSlotStore(rdb *redis.Client, opts ...Option) *SlotStore {
	return &SlotStore{store: newStore(rdb, opts...)}
}

// Create сохраняет новый слот (SETNX + индекс площадки)
func (s *SlotStore) Create(ctx context.Context, slot *domain.AvailabilitySlot) error {
	slot.Rev = 1

	body, err := json.Marshal(slotToDoc(slot))
	if err != nil {
		return fmt.Errorf("redisdoc: marshal slot: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.slotKey(slot.ID), body, 0).Result()
	if err != nil {
		return fmt.Errorf("redisdoc: create slot: %w", err)
	}
	if !ok {
		return storage.ErrAlreadyExists
	}

	if err := s.rdb.SAdd(ctx, s.siteSlotsKey(slot.SiteID), slot.ID).Err(); err != nil {
		return fmt.Errorf("redisdoc: index slot: %w", err)
	}

	return nil
}

// GetByID точечное чтение слота
func (s *SlotStore) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	raw, err := s.rdb.Get(ctx, s.slotKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisdoc: get slot: %w", err)
	}

	var doc slotDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("redisdoc: unmarshal slot: %w", err)
	}

	return docToSlot(&doc), nil
}

// ListActive возвращает активные слоты площадки
func (s *SlotStore) ListActive(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error) {
	return s.list(ctx, siteID, true)
}

// ListAll возвращает все слоты площадки
func (s *SlotStore) ListAll(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error) {
	return s.list(ctx, siteID, false)
}

// list читает индекс площадки и забирает документы одним MGET.
// Фильтрация по статусу выполняется на клиенте - предикатные запросы
// документного хранилища здесь сводятся к индексу + фильтру.
func (s *SlotStore) list(ctx context.Context, siteID string, onlyActive bool) ([]*domain.AvailabilitySlot, error) {
	ids, err := s.rdb.SMembers(ctx, s.siteSlotsKey(siteID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisdoc: list slot ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.AvailabilitySlot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.slotKey(id)
	}

	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redisdoc: mget slots: %w", err)
	}

	slots := make([]*domain.AvailabilitySlot, 0, len(raws))
	for _, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Документ удален между SMEMBERS и MGET - пропускаем
			continue
		}
		var doc slotDoc
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, fmt.Errorf("redisdoc: unmarshal slot: %w", err)
		}
		if onlyActive && domain.SlotStatus(doc.Status) != domain.SlotStatusActive {
			continue
		}
		slots = append(slots, docToSlot(&doc))
	}

	return slots, nil
}

// UpdateRevisioned условная запись слота через Lua CAS
func (s *SlotStore) UpdateRevisioned(ctx context.Context, slot *domain.AvailabilitySlot) error {
	next := *slot
	next.Rev = slot.Rev + 1

	body, err := json.Marshal(slotToDoc(&next))
	if err != nil {
		return fmt.Errorf("redisdoc: marshal slot: %w", err)
	}

	res, err := s.cas(ctx, s.slotKey(slot.ID), slot.Rev, body)
	if err != nil {
		return err
	}

	switch res {
	case casOK:
		slot.Rev++
		return nil
	case casConflict:
		return storage.ErrRevisionConflict
	case casMissing:
		return storage.ErrSlotNotFound
	default:
		return fmt.Errorf("%w: unexpected result %d", ErrScript, res)
	}
}
