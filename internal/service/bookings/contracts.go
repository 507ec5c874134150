package bookings

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByGroupID(ctx context.Context, groupID string) ([]*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByTenantWithFilter(ctx context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason string) error
}

// SlotRepository интерфейс репозитория слотов
// Отмена возвращает место в слот тем же условным UPDATE, что и списание
type SlotRepository interface {
	IncrementCapacity(ctx context.Context, id int64) error
}

// EntitlementRepository интерфейс репозитория квот абонементов
type EntitlementRepository interface {
	Refund(ctx context.Context, subscriptionID, serviceID int64) error
}

// EventPublisher интерфейс публикации событий жизненного цикла бронирования
type EventPublisher interface {
	PublishBookingCancelled(ctx context.Context, event events.BookingCancelledEvent)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
