package update_schedule_config

import (
	"context"

	"github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig/models"
)

type ConfigService interface {
	Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
