package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Slot, error)
	ListForDate(ctx context.Context, shiftIDs []int64, date time.Time, onlyAvailable, onlyWithCapacity bool) ([]*domain.Slot, error)
}

// ShiftRepository интерфейс репозитория шаблонов доступности
type ShiftRepository interface {
	ListActiveByService(ctx context.Context, tenantID, serviceID int64) ([]*domain.Shift, error)
}

// ConfigResolver возвращает эффективную конфигурацию расписания
type ConfigResolver interface {
	Resolve(ctx context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error)
}

// SlotLocker интерфейс менеджера межзапросных блокировок слотов
type SlotLocker interface {
	LockedSet(ctx context.Context, slotIDs []int64) (map[int64]string, error)
}

// RotationAssigner выбирает следующего сотрудника в циклическом порядке,
// не двигая курсор
type RotationAssigner interface {
	Assign(ctx context.Context, tenantID, serviceID int64, eligible []int64) (int64, error)
}

// ResourceServiceClient интерфейс клиента сервиса ресурсных расписаний
// Материализует слоты из расписаний сотрудников на конкретную дату
type ResourceServiceClient interface {
	MaterializeSlots(ctx context.Context, tenantID, serviceID int64, date time.Time) ([]int64, error)
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
