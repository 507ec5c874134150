package admission

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// AdmissionRepository интерфейс репозитория состояния кодов допуска
type AdmissionRepository interface {
	Consume(ctx context.Context, bookingID, actorID int64) (*domain.AdmissionScan, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
