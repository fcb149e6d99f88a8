package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Request модели

// CreateSlotRequest запрос на создание слота доступности
type CreateSlotRequest struct {
	OrgID  string `json:"orgId"`
	SiteID string `json:"siteId"`

	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "18:00"

	Recurrence        string  `json:"recurrence"`
	DayOfWeek         *int    `json:"dayOfWeek,omitempty"`         // обязателен при recurrence = weekly
	SpecificDate      *string `json:"specificDate,omitempty"`      // обязателен при recurrence = once
	RecurrenceEndDate *string `json:"recurrenceEndDate,omitempty"` // "2025-12-31"

	Capacity        int  `json:"capacity"`
	DurationMinutes int  `json:"durationMinutes"`
	BufferMinutes   *int `json:"bufferMinutes,omitempty"`
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID     string `json:"id"`
	OrgID  string `json:"orgId"`
	SiteID string `json:"siteId"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Recurrence        string  `json:"recurrence"`
	DayOfWeek         *int    `json:"dayOfWeek,omitempty"`
	SpecificDate      *string `json:"specificDate,omitempty"`
	RecurrenceEndDate *string `json:"recurrenceEndDate,omitempty"`

	Capacity          int  `json:"capacity"`
	BookedCount       int  `json:"bookedCount"`
	RemainingCapacity int  `json:"remainingCapacity"`
	DurationMinutes   int  `json:"durationMinutes"`
	BufferMinutes     *int `json:"bufferMinutes,omitempty"`

	Status string `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SlotListResponse ответ со списком слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.AvailabilitySlot) *SlotResponse {
	if s == nil {
		return nil
	}

	resp := &SlotResponse{
		ID:                s.ID,
		OrgID:             s.OrgID,
		SiteID:            s.SiteID,
		StartTime:         s.StartTime.String(),
		EndTime:           s.EndTime.String(),
		Recurrence:        string(s.Recurrence),
		Capacity:          s.Capacity,
		BookedCount:       s.BookedCount,
		RemainingCapacity: s.RemainingCapacity(),
		DurationMinutes:   s.DurationMinutes,
		BufferMinutes:     s.BufferMinutes,
		Status:            string(s.Status),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}

	if s.DayOfWeek != nil {
		day := int(*s.DayOfWeek)
		resp.DayOfWeek = &day
	}
	if s.SpecificDate != nil {
		date := s.SpecificDate.String()
		resp.SpecificDate = &date
	}
	if s.RecurrenceEndDate != nil {
		date := s.RecurrenceEndDate.String()
		resp.RecurrenceEndDate = &date
	}

	return resp
}

// FromDomainSlotList конвертирует список domain моделей в DTO
func FromDomainSlotList(slots []*domain.AvailabilitySlot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
	}

	for _, slot := range slots {
		if slotResp := FromDomainSlot(slot); slotResp != nil {
			resp.Slots = append(resp.Slots, *slotResp)
		}
	}

	return resp
}
