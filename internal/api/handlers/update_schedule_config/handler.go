package update_schedule_config

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidTenantID    = "некорректный ID тенанта"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "некорректные параметры конфигурации"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/tenants/{tenantId}/services/{serviceId}/schedule-config
// serviceId = 0 обновляет конфигурацию уровня тенанта
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /tenants/{id}/services/{id}/schedule-config - Missing user ID header")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)

	tenantID, err := strconv.ParseInt(vars["tenantId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /tenants/{id}/services/{id}/schedule-config - Invalid tenant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /tenants/{id}/services/{id}/schedule-config - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	var req UpdateConfigRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /tenants/{id}/services/{id}/schedule-config - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var serviceIDPtr *int64
	if serviceID != 0 {
		serviceIDPtr = &serviceID
	}
	serviceReq := req.ToServiceRequest(tenantID, serviceIDPtr)

	result, err := h.service.Update(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, scheduleconfig.ErrInvalidInput):
			h.logger.Warn("PUT /tenants/{id}/services/{id}/schedule-config - Invalid parameters: tenant_id=%d, service_id=%d",
				tenantID, serviceID)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("PUT /tenants/{id}/services/{id}/schedule-config - Failed to update config: tenant_id=%d, service_id=%d, error=%v",
				tenantID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /tenants/{id}/services/{id}/schedule-config - Config updated successfully: tenant_id=%d, service_id=%d, user_id=%d",
		tenantID, serviceID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
