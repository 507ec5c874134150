package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// SlotRepository интерфейс репозитория слотов
// GetByIDs внутри транзакции берет строки под FOR UPDATE
type SlotRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Slot, error)
	ListForDate(ctx context.Context, shiftIDs []int64, date time.Time, onlyAvailable, onlyWithCapacity bool) ([]*domain.Slot, error)
	DecrementCapacity(ctx context.Context, id int64) error
}

// ShiftRepository интерфейс репозитория шаблонов доступности
type ShiftRepository interface {
	ListActiveByService(ctx context.Context, tenantID, serviceID int64) ([]*domain.Shift, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Shift, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// EntitlementRepository интерфейс репозитория квот абонементов
type EntitlementRepository interface {
	Consume(ctx context.Context, subscriptionID, serviceID int64) error
}

// ConfigResolver возвращает эффективную конфигурацию расписания
type ConfigResolver interface {
	Resolve(ctx context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error)
}

// Allocator подбирает набор слотов для группового бронирования
type Allocator interface {
	Allocate(slots []*domain.Slot, quantity int, policy string, anchor *types.TimeString) ([]*domain.Slot, error)
}

// RotationService круговое назначение сотрудников
type RotationService interface {
	CommitAssignment(ctx context.Context, tenantID, serviceID, employeeID int64) error
}

// SlotLocker интерфейс менеджера межзапросных блокировок слотов
type SlotLocker interface {
	LockedSet(ctx context.Context, slotIDs []int64) (map[int64]string, error)
	Release(ctx context.Context, slotID int64, holder string) error
}

// EventPublisher интерфейс публикации событий жизненного цикла бронирования
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, event events.BookingCreatedEvent)
}

// ResourceServiceClient интерфейс клиента сервиса ресурсных расписаний
type ResourceServiceClient interface {
	MaterializeSlots(ctx context.Context, tenantID, serviceID int64, date time.Time) ([]int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
