package scan_admission

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/admission"
)

type AdmissionService interface {
	Consume(ctx context.Context, code string, actorID int64) (*admission.ScanResult, error)
}

// Metrics счетчик сканирований кодов допуска
// Может быть nil, если метрики отключены
type Metrics interface {
	IncAdmissionScan(result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
