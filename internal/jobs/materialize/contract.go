package materialize

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ConfigLister выдает конфигурации тенантов в resource-driven режиме
type ConfigLister interface {
	ListResourceMode(ctx context.Context) ([]*domain.ScheduleConfig, error)
}

// ResourceServiceClient материализует слоты услуги на дату
type ResourceServiceClient interface {
	MaterializeSlots(ctx context.Context, tenantID, serviceID int64, date time.Time) ([]int64, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
