package acquire_lock

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type SlotLocker interface {
	Acquire(ctx context.Context, slotID int64, holder string, ttl time.Duration) error
}

// ConfigResolver выдает действующую конфигурацию, определяющую TTL блокировки
type ConfigResolver interface {
	Resolve(ctx context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error)
}

// Metrics счетчик попыток захвата блокировки
// Может быть nil, если метрики отключены
type Metrics interface {
	IncLockAcquire(result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
