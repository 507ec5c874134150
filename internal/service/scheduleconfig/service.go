package scheduleconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/scheduleconfig"
	"github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig/models"
)

// Service сервис для работы с конфигурацией расписания
type Service struct {
	configRepo ConfigRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(configRepo ConfigRepository, logger Logger) *Service {
	return &Service{
		configRepo: configRepo,
		logger:     logger,
	}
}

// Get получает эффективную конфигурацию с учетом иерархии приоритетов:
// конфигурация конкретной услуги перекрывает tenant-wide запись.
// Если явной записи нет, возвращаются значения по умолчанию - отсутствие
// конфигурации никогда не блокирует выдачу доступности
func (s *Service) Get(ctx context.Context, req *models.GetConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Get: fetching config for tenant=%d, service=%v", req.TenantID, req.ServiceID)

	config, err := s.configRepo.GetWithHierarchy(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			s.logger.Info("Get: no config for tenant=%d, service=%v, using defaults", req.TenantID, req.ServiceID)
			return defaultConfigResponse(req.TenantID, req.ServiceID), nil
		}
		s.logger.Error("Get: repository error for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainConfig(config), nil
}

// Resolve возвращает эффективную domain-конфигурацию для внутренних потребителей
// (резолвер доступности, создание бронирования)
func (s *Service) Resolve(ctx context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error) {
	config, err := s.configRepo.GetWithHierarchy(ctx, tenantID, serviceID)
	if err != nil {
		if errors.Is(err, configRepo.ErrConfigNotFound) {
			return defaultConfig(tenantID, serviceID), nil
		}
		return nil, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
	}
	return config, nil
}

// Update создает или обновляет конфигурацию для пары (tenant, service)
// Частичное обновление: непереданные поля берутся из действующей
// конфигурации (или из значений по умолчанию, если записи еще нет)
func (s *Service) Update(ctx context.Context, req *models.UpdateConfigRequest) (*models.ConfigResponse, error) {
	s.logger.Info("Update: updating config for tenant=%d, service=%v", req.TenantID, req.ServiceID)

	// Базой служит действующая конфигурация
	base, err := s.Resolve(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	// Иерархический Resolve мог вернуть tenant-wide запись - ключ
	// перезаписываем на запрошенный, чтобы Upsert создал новую строку
	base.TenantID = req.TenantID
	base.ServiceID = req.ServiceID

	req.ApplyToConfig(base)

	if err := s.validate(base); err != nil {
		s.logger.Warn("Update: validation failed for tenant=%d: %v", req.TenantID, err)
		return nil, err
	}

	updated, err := s.configRepo.Upsert(ctx, base)
	if err != nil {
		s.logger.Error("Update: repository error for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully upserted config id=%d for tenant=%d", updated.ID, req.TenantID)
	return models.FromDomainConfig(updated), nil
}

// validate проверяет бизнес-ограничения конфигурации
func (s *Service) validate(config *domain.ScheduleConfig) error {
	if config.SchedulingMode != domain.ModeTemplate && config.SchedulingMode != domain.ModeResource {
		return fmt.Errorf("%w: schedulingMode must be %q or %q",
			ErrInvalidInput, domain.ModeTemplate, domain.ModeResource)
	}

	if config.LockTTLSeconds < domain.MinLockTTLSeconds || config.LockTTLSeconds > domain.MaxLockTTLSeconds {
		return fmt.Errorf("%w: lockTtlSeconds must be between %d and %d",
			ErrInvalidInput, domain.MinLockTTLSeconds, domain.MaxLockTTLSeconds)
	}

	if config.AdvanceBookingDays < domain.MinAdvanceBookingDays || config.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if config.MinBookingNoticeMinutes < 0 || config.MinBookingNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be between 0 and %d",
			ErrInvalidInput, domain.MaxBookingNoticeMinutes)
	}

	return nil
}

func defaultConfig(tenantID int64, serviceID *int64) *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		TenantID:                tenantID,
		ServiceID:               serviceID,
		SchedulingMode:          domain.DefaultSchedulingMode,
		AutoAssignEmployees:     domain.DefaultAutoAssignEmployees,
		LockTTLSeconds:          domain.DefaultLockTTLSeconds,
		AdvanceBookingDays:      domain.DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: domain.DefaultMinBookingNoticeMinutes,
	}
}

func defaultConfigResponse(tenantID int64, serviceID *int64) *models.ConfigResponse {
	resp := models.FromDomainConfig(defaultConfig(tenantID, serviceID))
	resp.IsDefault = true
	return resp
}
