package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос на смену статуса бронирования
type UpdateStatusRequest struct {
	Status string `json:"status"` // confirmed | completed | no_show
}

// UpdateNotesRequest запрос на обновление служебных заметок
type UpdateNotesRequest struct {
	StaffNotes string `json:"staffNotes"`
}

// ListBySlotRequest запрос на список бронирований слота
type ListBySlotRequest struct {
	SlotID string  `json:"slotId"`
	Status *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID     string `json:"id"`
	SlotID string `json:"slotId"`
	SiteID string `json:"siteId"`
	OrgID  string `json:"orgId"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Note        *string `json:"note,omitempty"`
	StaffNotes  *string `json:"staffNotes,omitempty"`

	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "11:00"

	Status string `json:"status"`

	ConfirmedAt *string `json:"confirmedAt,omitempty"` // ISO 8601
	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:          b.ID,
		SlotID:      b.SlotID,
		SiteID:      b.SiteID,
		OrgID:       b.OrgID,
		ClientName:  b.ClientName,
		ClientEmail: b.ClientEmail,
		ClientPhone: b.ClientPhone,
		Note:        b.Note,
		StaffNotes:  b.StaffNotes,
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}

	if b.ConfirmedAt != nil {
		confirmed := b.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &confirmed
	}
	if b.CancelledAt != nil {
		cancelled := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelled
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
