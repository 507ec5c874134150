package update_schedule_config

import (
	"github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig/models"
)

// UpdateConfigRequest HTTP request model
// Все поля опциональны - непереданные значения сохраняют действующую
// конфигурацию
type UpdateConfigRequest struct {
	SchedulingMode          *string `json:"schedulingMode,omitempty"`
	AutoAssignEmployees     *bool   `json:"autoAssignEmployees,omitempty"`
	LockTTLSeconds          *int    `json:"lockTtlSeconds,omitempty"`
	AdvanceBookingDays      *int    `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int    `json:"minBookingNoticeMinutes,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
// serviceID = nil обновляет конфигурацию уровня тенанта
func (r *UpdateConfigRequest) ToServiceRequest(tenantID int64, serviceID *int64) *models.UpdateConfigRequest {
	return &models.UpdateConfigRequest{
		TenantID:                tenantID,
		ServiceID:               serviceID,
		SchedulingMode:          r.SchedulingMode,
		AutoAssignEmployees:     r.AutoAssignEmployees,
		LockTTLSeconds:          r.LockTTLSeconds,
		AdvanceBookingDays:      r.AdvanceBookingDays,
		MinBookingNoticeMinutes: r.MinBookingNoticeMinutes,
	}
}
