package list_slot_bookings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/bookings/models"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/{slotId}/bookings
// Параметр ?status= фильтрует по статусу бронирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]
	if slotID == "" {
		h.logger.Warn("GET /slots/{id}/bookings - Missing slot ID")
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	req := &models.ListBySlotRequest{SlotID: slotID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.ListBySlot(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /slots/{id}/bookings - Validation failed: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /slots/{id}/bookings - Failed to list bookings: slot_id=%s, error=%v",
				slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/{id}/bookings - Listed %d bookings: slot_id=%s", len(result.Bookings), slotID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
