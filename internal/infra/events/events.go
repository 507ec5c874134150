package events

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingCreatedEvent событие о зафиксированном бронировании
// Публикуется после коммита транзакции; потребители (уведомления, счета,
// билеты) живут в других сервисах, их сбои этот сервис не волнуют
type BookingCreatedEvent struct {
	BookingIDs []int64   `json:"bookingIds"`
	GroupID    *string   `json:"groupId,omitempty"`
	TenantID   int64     `json:"tenantId"`
	UserID     int64     `json:"userId"`
	ServiceID  int64     `json:"serviceId"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookingCancelledEvent событие об отмене бронирования
type BookingCancelledEvent struct {
	BookingID   int64     `json:"bookingId"`
	TenantID    int64     `json:"tenantId"`
	UserID      int64     `json:"userId"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// NewBookingCreatedEvent собирает событие из созданных бронирований
func NewBookingCreatedEvent(bookings []*domain.Booking) BookingCreatedEvent {
	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	first := bookings[0]
	return BookingCreatedEvent{
		BookingIDs: ids,
		GroupID:    first.GroupID,
		TenantID:   first.TenantID,
		UserID:     first.UserID,
		ServiceID:  first.ServiceID,
		Date:       first.BookingDate.Format(domain.DateFormat),
		CreatedAt:  time.Now().UTC(),
	}
}
