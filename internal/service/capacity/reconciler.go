// Package capacity реализует учет занятости слотов через оптимистичную
// условную запись. Единственная точка, которой позволено менять
// BookedCount: проверка допуска и инкремент выполняются одной
// атомарной записью по ревизии, поэтому счетчик никогда не превышает
// Capacity ни при каком чередовании конкурентных запросов.
package capacity

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
)

// maxAttempts бюджет повторов условной записи. Конфликт ревизии
// означает, что конкурент успел первым - перечитываем и пробуем снова.
const maxAttempts = 5

// Reconciler согласует BookedCount слота с фактическими бронированиями
type Reconciler struct {
	slots   SlotStore
	logger  Logger
	metrics MetricsCollector
}

// NewReconciler создает новый reconciler
func NewReconciler(slots SlotStore, logger Logger, metrics MetricsCollector) *Reconciler {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Reconciler{slots: slots, logger: logger, metrics: metrics}
}

// Result результат успешного резервирования
type Result struct {
	// Slot состояние слота после коммита инкремента
	Slot *domain.AvailabilitySlot

	// Attempts число попыток до успешной записи
	Attempts int
}

// Reserve занимает одно место в слоте. Допуск (слот активен, есть
// свободное место) перепроверяется на каждой попытке по свежему
// чтению: решение, принятое по устаревшему снимку, не коммитится.
func (r *Reconciler) Reserve(ctx context.Context, slotID string) (*Result, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slot, err := r.slots.GetByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, storage.ErrSlotNotFound) {
				return nil, ErrSlotNotFound
			}
			return nil, fmt.Errorf("%w: get slot %s: %v", ErrInternal, slotID, err)
		}

		if !slot.IsActive() {
			return nil, ErrSlotUnavailable
		}
		if !slot.HasRemainingCapacity() {
			return nil, ErrCapacityExceeded
		}

		slot.BookedCount++

		err = r.slots.UpdateRevisioned(ctx, slot)
		if err == nil {
			return &Result{Slot: slot, Attempts: attempt}, nil
		}
		if !errors.Is(err, storage.ErrRevisionConflict) {
			return nil, fmt.Errorf("%w: reserve slot %s: %v", ErrInternal, slotID, err)
		}

		// Конкурент закоммитился первым - перечитываем и повторяем
		r.metrics.IncCapacityRetry("reserve")
		r.logger.Warn("capacity: reserve conflict on slot %s, attempt %d/%d", slotID, attempt, maxAttempts)
	}

	// Бюджет повторов исчерпан - слот под непрерывной конкуренцией,
	// для вызывающего это неотличимо от исчерпанной вместимости
	return nil, ErrCapacityExceeded
}

// Release освобождает одно место в слоте. Счетчик не уходит ниже нуля.
func (r *Reconciler) Release(ctx context.Context, slotID string) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slot, err := r.slots.GetByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, storage.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: get slot %s: %v", ErrInternal, slotID, err)
		}

		if slot.BookedCount == 0 {
			return nil
		}
		slot.BookedCount--

		err = r.slots.UpdateRevisioned(ctx, slot)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrRevisionConflict) {
			return fmt.Errorf("%w: release slot %s: %v", ErrInternal, slotID, err)
		}

		r.metrics.IncCapacityRetry("release")
		r.logger.Warn("capacity: release conflict on slot %s, attempt %d/%d", slotID, attempt, maxAttempts)
	}

	return fmt.Errorf("%w: release slot %s: retry budget exhausted", ErrInternal, slotID)
}
