package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending            BookingStatus = "pending"
	StatusConfirmed          BookingStatus = "confirmed"
	StatusInProgress         BookingStatus = "in_progress"
	StatusCompleted          BookingStatus = "completed"
	StatusCancelledByUser    BookingStatus = "cancelled_by_user"
	StatusCancelledByTenant  BookingStatus = "cancelled_by_tenant"
	StatusNoShow             BookingStatus = "no_show"
)

// Booking бронирование одного слота
// Групповое бронирование (несколько слотов) связывается общим GroupID
type Booking struct {
	ID              int64
	TenantID        int64
	UserID          int64
	ServiceID       int64
	SlotID          int64
	EmployeeID      *int64
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus

	// Ссылка на абонемент, если бронирование покрыто пакетом
	SubscriptionID *int64

	// Общий идентификатор группового бронирования
	GroupID *string

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	// Состояние кода допуска (QR/штрихкод)
	Scanned   bool
	ScannedAt *time.Time
	ScannedBy *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если бронирование в активном статусе
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelledByUser &&
		b.Status != StatusCancelledByTenant &&
		b.Status != StatusNoShow
}

// CanBeCancelled возвращает true, если бронирование можно отменить
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled возвращает true, если бронирование отменено
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelledByUser || b.Status == StatusCancelledByTenant
}

// HasSubscription возвращает true, если бронирование покрыто абонементом
func (b *Booking) HasSubscription() bool {
	return b.SubscriptionID != nil
}

// TenantBookingsFilter фильтр для получения бронирований тенанта
type TenantBookingsFilter struct {
	TenantID        int64          // Обязательный параметр
	ServiceID       *int64         // Фильтр по услуге (опционально)
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отмененные и no-show
}

// AdmissionScan результат первого сканирования кода допуска
// Возвращается при повторном сканировании для аудита: кто и когда использовал код
type AdmissionScan struct {
	BookingID int64
	ScannedAt time.Time
	ScannedBy int64
}
