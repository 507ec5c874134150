package create_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgUnauthorized         = "требуется авторизация"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidParams        = "некорректные параметры бронирования"
	msgInvalidDate          = "некорректная дата бронирования"
	msgDateTooFar           = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook        = "слишком поздно для бронирования этого слота"
	msgSlotNotAvailable     = "выбранный слот недоступен"
	msgSlotLocked           = "слот удерживается другим пользователем"
	msgInsufficientSlots    = "недостаточно свободных слотов для запрошенного количества"
	msgEntitlementExhausted = "квота абонемента исчерпана"
	msgEntitlementNotFound  = "абонемент не найден"
)

type Handler struct {
	useCase CreateBookingUseCase
	metrics Metrics
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, metrics Metrics, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID header")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.rejected(err)
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings - Slot not available: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createBooking.ErrSlotLocked):
			h.logger.Warn("POST /bookings - Slot locked by another holder: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondConflict(w, msgSlotLocked)

		case errors.Is(err, createBooking.ErrInsufficientSlots):
			h.logger.Warn("POST /bookings - Insufficient slots: user_id=%d, tenant_id=%d, quantity=%d",
				userID, req.TenantID, req.Quantity)
			handlers.RespondConflict(w, msgInsufficientSlots)

		case errors.Is(err, createBooking.ErrEntitlementExhausted):
			h.logger.Warn("POST /bookings - Entitlement exhausted: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondConflict(w, msgEntitlementExhausted)

		case errors.Is(err, createBooking.ErrEntitlementNotFound):
			h.logger.Warn("POST /bookings - Entitlement not found: user_id=%d, tenant_id=%d", userID, req.TenantID)
			handlers.RespondNotFound(w, msgEntitlementNotFound)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, tenant_id=%d, error=%v",
				userID, req.TenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.IncBookingCreated(strconv.FormatInt(req.TenantID, 10))
	}

	h.logger.Info("POST /bookings - Booking created successfully: user_id=%d, tenant_id=%d, bookings_count=%d",
		userID, req.TenantID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// rejected записывает метрику отклоненной попытки с причиной
func (h *Handler) rejected(err error) {
	if h.metrics == nil {
		return
	}

	switch {
	case errors.Is(err, createBooking.ErrSlotNotAvailable):
		h.metrics.IncBookingRejected("slot_not_available")
	case errors.Is(err, createBooking.ErrSlotLocked):
		h.metrics.IncBookingRejected("slot_locked")
	case errors.Is(err, createBooking.ErrInsufficientSlots):
		h.metrics.IncBookingRejected("insufficient_slots")
	case errors.Is(err, createBooking.ErrEntitlementExhausted):
		h.metrics.IncBookingRejected("entitlement_exhausted")
	case errors.Is(err, createBooking.ErrInternal):
		h.metrics.IncBookingRejected("internal")
	default:
		h.metrics.IncBookingRejected("validation")
	}
}
