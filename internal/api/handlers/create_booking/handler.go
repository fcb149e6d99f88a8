package create_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSlotNotFound       = "слот не найден"
	msgSlotUnavailable    = "слот недоступен для бронирования"
	msgCapacityExceeded   = "в слоте нет свободных мест"
	msgOverlapping        = "у клиента уже есть пересекающееся бронирование"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/sites/{siteId}/slots/{slotId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req createBooking.Request
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /sites/{siteId}/slots/{slotId}/bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.SiteID = vars["siteId"]
	req.SlotID = vars["slotId"]

	result, err := h.useCase.Execute(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /sites/{siteId}/slots/{slotId}/bookings - Validation failed: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, createBooking.ErrSlotNotFound):
			h.logger.Warn("POST /sites/{siteId}/slots/{slotId}/bookings - Slot not found: slot_id=%s", req.SlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, createBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /sites/{siteId}/slots/{slotId}/bookings - Slot unavailable: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgSlotUnavailable)

		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /sites/{siteId}/slots/{slotId}/bookings - Capacity exceeded: slot_id=%s", req.SlotID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrOverlappingBooking):
			h.logger.Warn("POST /sites/{siteId}/slots/{slotId}/bookings - Overlapping booking: slot_id=%s, client=%s",
				req.SlotID, req.ClientEmail)
			handlers.RespondConflict(w, msgOverlapping)

		default:
			h.logger.Error("POST /sites/{siteId}/slots/{slotId}/bookings - Failed to create booking: slot_id=%s, error=%v", req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sites/{siteId}/slots/{slotId}/bookings - Booking created successfully: booking_id=%s, slot_id=%s",
		result.ID, result.SlotID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
