package list_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

const (
	msgInvalidSiteID = "некорректный ID площадки"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/sites/{siteId}/slots
// Параметр ?includeInactive=true возвращает и неактивные слоты
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	siteID := mux.Vars(r)["siteId"]
	if siteID == "" {
		h.logger.Warn("GET /sites/{id}/slots - Missing site ID")
		handlers.RespondBadRequest(w, msgInvalidSiteID)
		return
	}

	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	var (
		result *models.SlotListResponse
		err    error
	)
	if includeInactive {
		result, err = h.service.ListAll(r.Context(), siteID)
	} else {
		result, err = h.service.ListActive(r.Context(), siteID)
	}
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("GET /sites/{id}/slots - Validation failed: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /sites/{id}/slots - Failed to list slots: site_id=%s, error=%v", siteID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /sites/{id}/slots - Listed %d slots: site_id=%s, includeInactive=%t",
		len(result.Slots), siteID, includeInactive)
	handlers.RespondJSON(w, http.StatusOK, result)
}
