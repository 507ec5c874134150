package release_lock

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/locker"
)

const (
	msgUnauthorized  = "требуется авторизация"
	msgInvalidSlotID = "некорректный ID слота"
	msgMissingHolder = "токен держателя блокировки обязателен"
	msgNotLockHolder = "блокировка удерживается другим пользователем"
)

type Handler struct {
	locker SlotLocker
	logger Logger
}

func NewHandler(locker SlotLocker, logger Logger) *Handler {
	return &Handler{
		locker: locker,
		logger: logger,
	}
}

// Handle DELETE /api/v1/slots/{slotId}/lock
// Query params: holderToken (обязателен)
// Снять блокировку может только её держатель
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /slots/{slotId}/lock - Missing user ID header")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	slotID, err := strconv.ParseInt(vars["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /slots/{slotId}/lock - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	holder := r.URL.Query().Get("holderToken")
	if holder == "" {
		h.logger.Warn("DELETE /slots/{slotId}/lock - Missing holder token: slot_id=%d, user_id=%d",
			slotID, userID)
		handlers.RespondBadRequest(w, msgMissingHolder)
		return
	}

	err = h.locker.Release(r.Context(), slotID, holder)
	if err != nil {
		switch {
		case errors.Is(err, locker.ErrNotHolder):
			h.logger.Warn("DELETE /slots/{slotId}/lock - Not the lock holder: slot_id=%d, user_id=%d",
				slotID, userID)
			handlers.RespondForbidden(w, msgNotLockHolder)

		default:
			h.logger.Error("DELETE /slots/{slotId}/lock - Failed to release lock: slot_id=%d, error=%v",
				slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /slots/{slotId}/lock - Lock released: slot_id=%d, user_id=%d", slotID, userID)
	handlers.RespondJSON(w, http.StatusOK, nil)
}
