package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	getAvailability "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
)

const (
	msgInvalidTenantID  = "некорректный ID тенанта"
	msgInvalidServiceID = "некорректный ID услуги"
	msgMissingDate      = "дата обязательна"
	msgInvalidParams    = "некорректные параметры запроса"
	msgInvalidDate      = "некорректная дата"
	msgDateTooFar       = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/tenants/{tenantId}/services/{serviceId}/availability
// Query params: date (обязателен, YYYY-MM-DD), includeLocked, includePast, includeFull
// Публичный endpoint - ID пользователя берется из контекста, если есть
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	tenantID, err := strconv.ParseInt(vars["tenantId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Invalid tenant ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTenantID)
		return
	}

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	query := r.URL.Query()
	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Missing date: tenant_id=%d", tenantID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	useCaseReq, err := ToUseCaseRequest(
		userID,
		tenantID,
		serviceID,
		dateStr,
		query.Get("includeLocked"),
		query.Get("includePast"),
		query.Get("includeFull"),
	)
	if err != nil {
		h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Invalid input: tenant_id=%d, service_id=%d",
				tenantID, serviceID)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, getAvailability.ErrInvalidDate):
			h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Invalid date: tenant_id=%d, date=%s",
				tenantID, dateStr)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailability.ErrDateTooFarInFuture):
			h.logger.Warn("GET /tenants/{id}/services/{id}/availability - Date too far in future: tenant_id=%d, date=%s",
				tenantID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		default:
			h.logger.Error("GET /tenants/{id}/services/{id}/availability - Failed to get availability: tenant_id=%d, service_id=%d, error=%v",
				tenantID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /tenants/{id}/services/{id}/availability - Availability retrieved: tenant_id=%d, service_id=%d, date=%s, slots_count=%d",
		tenantID, serviceID, dateStr, len(response.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
