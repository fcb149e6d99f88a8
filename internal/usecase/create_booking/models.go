package create_booking

import "time"

// Request запрос на создание бронирования.
// SiteID и SlotID приходят из пути запроса, а не из тела.
type Request struct {
	SiteID string `json:"-"`
	SlotID string `json:"-"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Note        *string `json:"note,omitempty"`
}

// Response ответ с созданным бронированием
type Response struct {
	ID     string `json:"id"`
	SlotID string `json:"slotId"`
	SiteID string `json:"siteId"`
	OrgID  string `json:"orgId"`

	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Note        *string `json:"note,omitempty"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Status string `json:"status"`

	// RemainingCapacity состояние слота сразу после допуска
	RemainingCapacity int `json:"remainingCapacity"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
