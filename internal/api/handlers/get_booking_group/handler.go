package get_booking_group

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgUnauthorized   = "требуется авторизация"
	msgInvalidGroupID = "некорректный ID группы бронирований"
	msgNotFound       = "группа бронирований не найдена"
	msgForbidden      = "доступ запрещен"
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

// Handle GET /api/v1/bookings/groups/{groupId}
// Все бронирования группового заказа одним ответом
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/groups/{groupId} - Missing user ID header")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	groupID := vars["groupId"]
	if _, err := uuid.Parse(groupID); err != nil {
		h.logger.Warn("GET /bookings/groups/{groupId} - Invalid group ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGroupID)
		return
	}

	result, err := h.service.GetGroup(r.Context(), groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/groups/{groupId} - Group not found: group_id=%s", groupID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/groups/{groupId} - Access denied: group_id=%s, user_id=%d",
				groupID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/groups/{groupId} - Failed to get group: group_id=%s, error=%v",
				groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/groups/{groupId} - Group retrieved successfully: group_id=%s, count=%d",
		groupID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
