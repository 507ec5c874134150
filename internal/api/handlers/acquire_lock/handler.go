package acquire_lock

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/locker"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingTenantID    = "ID тенанта обязателен"
	msgAlreadyLocked      = "слот уже удерживается другим пользователем"
)

type Handler struct {
	locker  SlotLocker
	configs ConfigResolver
	metrics Metrics
	logger  Logger
}

func NewHandler(locker SlotLocker, configs ConfigResolver, metrics Metrics, logger Logger) *Handler {
	return &Handler{
		locker:  locker,
		configs: configs,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/lock
// TTL блокировки берется из действующей конфигурации тенанта/услуги
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{slotId}/lock - Missing user ID header")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	slotID, err := strconv.ParseInt(vars["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /slots/{slotId}/lock - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req AcquireLockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots/{slotId}/lock - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.TenantID <= 0 {
		h.logger.Warn("POST /slots/{slotId}/lock - Missing tenant ID: slot_id=%d, user_id=%d", slotID, userID)
		handlers.RespondBadRequest(w, msgMissingTenantID)
		return
	}

	holder := req.HolderToken
	if holder == "" {
		holder = uuid.NewString()
	}

	config, err := h.configs.Resolve(r.Context(), req.TenantID, req.ServiceID)
	if err != nil {
		h.logger.Error("POST /slots/{slotId}/lock - Failed to resolve config: tenant_id=%d, error=%v",
			req.TenantID, err)
		handlers.RespondInternalError(w)
		return
	}
	ttl := time.Duration(config.LockTTLSeconds) * time.Second

	err = h.locker.Acquire(r.Context(), slotID, holder, ttl)
	if err != nil {
		switch {
		case errors.Is(err, locker.ErrAlreadyLocked):
			if h.metrics != nil {
				h.metrics.IncLockAcquire("conflict")
			}
			h.logger.Warn("POST /slots/{slotId}/lock - Slot already locked: slot_id=%d, user_id=%d",
				slotID, userID)
			handlers.RespondConflict(w, msgAlreadyLocked)

		default:
			if h.metrics != nil {
				h.metrics.IncLockAcquire("error")
			}
			h.logger.Error("POST /slots/{slotId}/lock - Failed to acquire lock: slot_id=%d, error=%v",
				slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.IncLockAcquire("ok")
	}

	h.logger.Info("POST /slots/{slotId}/lock - Lock acquired: slot_id=%d, user_id=%d, ttl=%s",
		slotID, userID, ttl)
	handlers.RespondJSON(w, http.StatusOK, toResponse(slotID, holder, ttl, time.Now()))
}
