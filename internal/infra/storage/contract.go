// Package storage задает контракт storage adapter: единый интерфейс
// над двумя хранилищами (реляционным Postgres и ревизионным
// документным Redis) плюс in-memory реализация для тестов.
//
// Ключевой примитив - UpdateRevisioned: условная запись, которая
// проходит только если ревизия сущности в хранилище совпадает с
// ревизией, прочитанной вызывающим кодом. Устаревшая запись
// завершается ErrRevisionConflict, а не молча затирает чужой коммит.
package storage

import (
	"context"
	"errors"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("storage: slot not found")

	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("storage: booking not found")

	// ErrRevisionConflict возвращается, когда условная запись отклонена:
	// ревизия устарела, другая запись закоммитилась первой
	ErrRevisionConflict = errors.New("storage: revision conflict")

	// ErrAlreadyExists возвращается при попытке создать сущность с занятым ID
	ErrAlreadyExists = errors.New("storage: entity already exists")
)

// SlotStore интерфейс хранилища слотов
type SlotStore interface {
	// Create сохраняет новый слот (Rev выставляется хранилищем в 1)
	Create(ctx context.Context, slot *domain.AvailabilitySlot) error

	// GetByID точечное чтение по ID; всегда отражает последнюю
	// закоммиченную запись (без кэширования)
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)

	// ListActive возвращает активные слоты площадки
	ListActive(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error)

	// ListAll возвращает все слоты площадки, включая неактивные
	ListAll(ctx context.Context, siteID string) ([]*domain.AvailabilitySlot, error)

	// UpdateRevisioned записывает слот, только если его Rev совпадает
	// с текущей ревизией в хранилище. При успехе инкрементирует Rev
	// (и в хранилище, и в переданной сущности). При расхождении
	// возвращает ErrRevisionConflict.
	UpdateRevisioned(ctx context.Context, slot *domain.AvailabilitySlot) error
}

// BookingStore интерфейс хранилища бронирований
type BookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// ListBySlot возвращает бронирования слота, опционально
	// отфильтрованные по статусам (nil/пусто - все статусы)
	ListBySlot(ctx context.Context, slotID string, statuses []domain.BookingStatus) ([]*domain.Booking, error)

	// UpdateRevisioned условная запись бронирования, контракт
	// идентичен SlotStore.UpdateRevisioned
	UpdateRevisioned(ctx context.Context, booking *domain.Booking) error
}

// NopTxManager транзакционный менеджер-заглушка для документных
// хранилищ: атомарность там обеспечивается per-document CAS, а не
// многооператорными транзакциями
type NopTxManager struct{}

// DoSerializable выполняет fn без открытия транзакции
func (NopTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
