package create_booking

import (
	"context"

	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

// Metrics счетчики бизнес-метрик бронирования
// Может быть nil, если метрики отключены
type Metrics interface {
	IncBookingCreated(tenant string)
	IncBookingRejected(reason string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
