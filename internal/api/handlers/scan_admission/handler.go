package scan_admission

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/service/admission"
)

const (
	msgUnauthorized       = "требуется авторизация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidCode        = "некорректный формат кода допуска"
	msgBookingNotFound    = "бронирование по коду не найдено"
	msgAlreadyConsumed    = "код допуска уже использован"
)

type Handler struct {
	service AdmissionService
	metrics Metrics
	logger  Logger
}

func NewHandler(service AdmissionService, metrics Metrics, logger Logger) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle POST /api/v1/admissions/scan
// Повторное сканирование возвращает 409 с данными первого сканирования
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /admissions/scan - Missing user ID header")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req ScanRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admissions/scan - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Consume(r.Context(), req.Code, actorID)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrInvalidCode):
			h.scanned("invalid")
			h.logger.Warn("POST /admissions/scan - Invalid code format: actor_id=%d", actorID)
			handlers.RespondBadRequest(w, msgInvalidCode)

		case errors.Is(err, admission.ErrBookingNotFound):
			h.scanned("not_found")
			h.logger.Warn("POST /admissions/scan - Booking not found: actor_id=%d", actorID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, admission.ErrAlreadyConsumed):
			h.scanned("duplicate")
			h.logger.Warn("POST /admissions/scan - Code already consumed: booking_id=%d, actor_id=%d, first_scanned_by=%d",
				result.BookingID, actorID, result.ScannedBy)
			handlers.RespondErrorPayload(w, http.StatusConflict, &AlreadyScannedResponse{
				Error:     msgAlreadyConsumed,
				BookingID: result.BookingID,
				ScannedAt: result.ScannedAt.Format(time.RFC3339),
				ScannedBy: result.ScannedBy,
			})

		default:
			h.scanned("error")
			h.logger.Error("POST /admissions/scan - Failed to consume code: actor_id=%d, error=%v",
				actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.scanned("ok")
	h.logger.Info("POST /admissions/scan - Code consumed successfully: booking_id=%d, actor_id=%d",
		result.BookingID, actorID)
	handlers.RespondJSON(w, http.StatusOK, FromScanResult(result))
}

func (h *Handler) scanned(result string) {
	if h.metrics != nil {
		h.metrics.IncAdmissionScan(result)
	}
}
