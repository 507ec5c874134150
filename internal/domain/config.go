package domain

import "time"

// SchedulingMode режим формирования доступности услуги
type SchedulingMode string

const (
	// ModeTemplate слоты порождаются фиксированными шаблонами (Shift)
	ModeTemplate SchedulingMode = "template"

	// ModeResource слоты порождаются расписаниями конкретных сотрудников;
	// материализуются внешним сервисом на каждую дату
	ModeResource SchedulingMode = "resource"
)

// ScheduleConfig конфигурация расписания
// Иерархическая: запись для конкретной услуги перекрывает запись тенанта
// (service_id = NULL - конфигурация на весь тенант)
type ScheduleConfig struct {
	ID                      int64
	TenantID                int64
	ServiceID               *int64 // NULL = конфигурация для всех услуг тенанта
	SchedulingMode          SchedulingMode
	AutoAssignEmployees     bool // выдавать один слот на время, по ротации сотрудников
	LockTTLSeconds          int
	AdvanceBookingDays      int // 0 = без ограничения
	MinBookingNoticeMinutes int
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsTenantWide возвращает true, если конфигурация действует на весь тенант
func (c *ScheduleConfig) IsTenantWide() bool {
	return c.ServiceID == nil
}

// IsResourceDriven возвращает true, если доступность определяется
// расписаниями сотрудников, а не фиксированными шаблонами
func (c *ScheduleConfig) IsResourceDriven() bool {
	return c.SchedulingMode == ModeResource
}

// HasAdvanceBookingLimit возвращает true, если есть ограничение
// на глубину бронирования вперед
func (c *ScheduleConfig) HasAdvanceBookingLimit() bool {
	return c.AdvanceBookingDays > 0
}
