package get_schedule_config

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig/models"
)

const (
	msgInvalidTenantID  = "некорректный ID тенанта"
	msgInvalidServiceID = "некорректный ID услуги"
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

// Handle GET /api/v1/tenants/{tenantId}/services/{serviceId}/schedule-config
// serviceId = 0 запрашивает конфигурацию уровня тенанта
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	tenantID, err := strconv.ParseInt(vars["tenantId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/services/{id}/schedule-config - Invalid tenant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/services/{id}/schedule-config - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	serviceReq := &models.GetConfigRequest{TenantID: tenantID}
	if serviceID != 0 {
		serviceReq.ServiceID = &serviceID
	}

	result, err := h.service.Get(r.Context(), serviceReq)
	if err != nil {
		h.logger.Error("GET /tenants/{id}/services/{id}/schedule-config - Failed to get config: tenant_id=%d, service_id=%d, error=%v",
			tenantID, serviceID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /tenants/{id}/services/{id}/schedule-config - Config retrieved successfully: tenant_id=%d, service_id=%d, is_default=%t",
		tenantID, serviceID, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
