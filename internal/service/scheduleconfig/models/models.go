package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модели

// GetConfigRequest запрос на получение эффективной конфигурации
// ServiceID может быть nil - тогда возвращается tenant-wide конфигурация
type GetConfigRequest struct {
	TenantID  int64  `json:"tenantId"`
	ServiceID *int64 `json:"serviceId,omitempty"`
}

// UpdateConfigRequest запрос на создание или обновление конфигурации
// Все поля опциональны - непереданные значения берутся из действующей
// конфигурации либо из значений по умолчанию
type UpdateConfigRequest struct {
	TenantID                int64   `json:"tenantId"`
	ServiceID               *int64  `json:"serviceId,omitempty"`
	SchedulingMode          *string `json:"schedulingMode,omitempty"`
	AutoAssignEmployees     *bool   `json:"autoAssignEmployees,omitempty"`
	LockTTLSeconds          *int    `json:"lockTtlSeconds,omitempty"`
	AdvanceBookingDays      *int    `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int    `json:"minBookingNoticeMinutes,omitempty"`
}

// ApplyToConfig применяет обновления к существующей конфигурации
// Обновляются только непустые (not nil) поля из request
func (r *UpdateConfigRequest) ApplyToConfig(config *domain.ScheduleConfig) {
	if r.SchedulingMode != nil {
		config.SchedulingMode = domain.SchedulingMode(*r.SchedulingMode)
	}
	if r.AutoAssignEmployees != nil {
		config.AutoAssignEmployees = *r.AutoAssignEmployees
	}
	if r.LockTTLSeconds != nil {
		config.LockTTLSeconds = *r.LockTTLSeconds
	}
	if r.AdvanceBookingDays != nil {
		config.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MinBookingNoticeMinutes != nil {
		config.MinBookingNoticeMinutes = *r.MinBookingNoticeMinutes
	}
}

// Response модели

// ConfigResponse ответ с данными конфигурации расписания
type ConfigResponse struct {
	ID                      int64     `json:"id,omitempty"`
	TenantID                int64     `json:"tenantId"`
	ServiceID               *int64    `json:"serviceId,omitempty"`
	SchedulingMode          string    `json:"schedulingMode"`
	AutoAssignEmployees     bool      `json:"autoAssignEmployees"`
	LockTTLSeconds          int       `json:"lockTtlSeconds"`
	AdvanceBookingDays      int       `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int       `json:"minBookingNoticeMinutes"`
	IsDefault               bool      `json:"isDefault,omitempty"` // Явной записи нет, выданы значения по умолчанию
	CreatedAt               time.Time `json:"createdAt,omitempty"`
	UpdatedAt               time.Time `json:"updatedAt,omitempty"`
}

// FromDomainConfig конвертирует domain модель в DTO
func FromDomainConfig(c *domain.ScheduleConfig) *ConfigResponse {
	if c == nil {
		return nil
	}

	return &ConfigResponse{
		ID:                      c.ID,
		TenantID:                c.TenantID,
		ServiceID:               c.ServiceID,
		SchedulingMode:          string(c.SchedulingMode),
		AutoAssignEmployees:     c.AutoAssignEmployees,
		LockTTLSeconds:          c.LockTTLSeconds,
		AdvanceBookingDays:      c.AdvanceBookingDays,
		MinBookingNoticeMinutes: c.MinBookingNoticeMinutes,
		CreatedAt:               c.CreatedAt,
		UpdatedAt:               c.UpdatedAt,
	}
}
