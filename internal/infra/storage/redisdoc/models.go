package redisdoc

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// slotDoc JSON представление слота в документном хранилище
type slotDoc struct {
	ID     string `json:"id"`
	OrgID  string `json:"orgId"`
	SiteID string `json:"siteId"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	DayOfWeek         *int    `json:"dayOfWeek,omitempty"`
	Recurrence        string  `json:"recurrence"`
	SpecificDate      *string `json:"specificDate,omitempty"`
	RecurrenceEndDate *string `json:"recurrenceEndDate,omitempty"`

	Capacity        int  `json:"capacity"`
	BookedCount     int  `json:"bookedCount"`
	DurationMinutes int  `json:"durationMinutes"`
	BufferMinutes   *int `json:"bufferMinutes,omitempty"`

	Status string `json:"status"`
	Rev    int64  `json:"rev"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func slotToDoc(s *domain.AvailabilitySlot) *slotDoc {
	doc := &slotDoc{
		ID:              s.ID,
		OrgID:           s.OrgID,
		SiteID:          s.SiteID,
		StartTime:       s.StartTime.String(),
		EndTime:         s.EndTime.String(),
		Recurrence:      string(s.Recurrence),
		Capacity:        s.Capacity,
		BookedCount:     s.BookedCount,
		DurationMinutes: s.DurationMinutes,
		BufferMinutes:   s.BufferMinutes,
		Status:          string(s.Status),
		Rev:             s.Rev,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.DayOfWeek != nil {
		day := int(*s.DayOfWeek)
		doc.DayOfWeek = &day
	}
	if s.SpecificDate != nil {
		date := s.SpecificDate.String()
		doc.SpecificDate = &date
	}
	if s.RecurrenceEndDate != nil {
		date := s.RecurrenceEndDate.String()
		doc.RecurrenceEndDate = &date
	}
	return doc
}

func docToSlot(doc *slotDoc) *domain.AvailabilitySlot {
	slot := &domain.AvailabilitySlot{
		ID:              doc.ID,
		OrgID:           doc.OrgID,
		SiteID:          doc.SiteID,
		StartTime:       types.TimeString(doc.StartTime),
		EndTime:         types.TimeString(doc.EndTime),
		Recurrence:      domain.Recurrence(doc.Recurrence),
		Capacity:        doc.Capacity,
		BookedCount:     doc.BookedCount,
		DurationMinutes: doc.DurationMinutes,
		BufferMinutes:   doc.BufferMinutes,
		Status:          domain.SlotStatus(doc.Status),
		Rev:             doc.Rev,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.DayOfWeek != nil {
		weekday := time.Weekday(*doc.DayOfWeek)
		slot.DayOfWeek = &weekday
	}
	if doc.SpecificDate != nil {
		date := types.Date(*doc.SpecificDate)
		slot.SpecificDate = &date
	}
	if doc.RecurrenceEndDate != nil {
		date := types.Date(*doc.RecurrenceEndDate)
		slot.RecurrenceEndDate = &date
	}
	return slot
}

// bookingDoc JSON представление бронирования в документном хранилище
type bookingDoc struct {
	ID     string `json:"id"`
	SlotID string `json:"slotId"`
	SiteID string `json:"siteId"`
	OrgID  string `json:"orgId"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Note        *string `json:"note,omitempty"`
	StaffNotes  *string `json:"staffNotes,omitempty"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Status string `json:"status"`
	Rev    int64  `json:"rev"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func bookingToDoc(b *domain.Booking) *bookingDoc {
	return &bookingDoc{
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
		Rev:         b.Rev,
		ConfirmedAt: b.ConfirmedAt,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func docToBooking(doc *bookingDoc) *domain.Booking {
	return &domain.Booking{
		ID:          doc.ID,
		SlotID:      doc.SlotID,
		SiteID:      doc.SiteID,
		OrgID:       doc.OrgID,
		ClientName:  doc.ClientName,
		ClientEmail: doc.ClientEmail,
		ClientPhone: doc.ClientPhone,
		Note:        doc.Note,
		StaffNotes:  doc.StaffNotes,
		StartTime:   types.TimeString(doc.StartTime),
		EndTime:     types.TimeString(doc.EndTime),
		Status:      domain.BookingStatus(doc.Status),
		Rev:         doc.Rev,
		ConfirmedAt: doc.ConfirmedAt,
		CancelledAt: doc.CancelledAt,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}
