package rotation

import "context"

// CursorRepository интерфейс репозитория курсора ротации
type CursorRepository interface {
	GetCursor(ctx context.Context, tenantID, serviceID int64) (*int64, error)
	Advance(ctx context.Context, tenantID, serviceID, employeeID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
