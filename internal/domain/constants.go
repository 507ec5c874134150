package domain

// Значения по умолчанию для конфигурации расписания
const (
	DefaultSchedulingMode          = ModeTemplate
	DefaultAutoAssignEmployees     = false
	DefaultLockTTLSeconds          = 120
	DefaultAdvanceBookingDays      = 0 // 0 = без ограничения
	DefaultMinBookingNoticeMinutes = 0
)

// Ограничения бизнес-валидации
const (
	MinLockTTLSeconds           = 10
	MaxLockTTLSeconds           = 600 // 10 минут
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365
	MaxBookingNoticeMinutes     = 10080 // неделя
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxBookingQuantity          = 20
)

// Политики группового бронирования
const (
	// PolicyParallel группа занимает одно и то же время у разных сотрудников
	PolicyParallel = "parallel"

	// PolicyConsecutive группа занимает подряд идущие слоты одного сотрудника
	PolicyConsecutive = "consecutive"
)

// Форматы времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы неактивных бронирований
// Используется для фильтрации при выборках
var InactiveStatuses = []BookingStatus{
	StatusCancelledByUser,
	StatusCancelledByTenant,
	StatusNoShow,
}

// CancellableStatuses статусы, из которых бронирование можно отменить
var CancellableStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// ActiveStatuses статусы активных бронирований
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
