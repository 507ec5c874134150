package scheduleconfig

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

var configColumns = []string{
	"id",
	"tenant_id",
	"service_id",
	"scheduling_mode",
	"auto_assign_employees",
	"lock_ttl_seconds",
	"advance_booking_days",
	"min_booking_notice_minutes",
	"created_at",
	"updated_at",
}

// Repository репозиторий конфигурации расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория конфигурации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWithHierarchy получает конфигурацию с учетом иерархии приоритетов:
// 1. Конфигурация конкретной услуги (tenant_id, service_id)
// 2. Конфигурация всего тенанта (tenant_id, NULL)
// Первая найденная запись побеждает
func (r *Repository) GetWithHierarchy(ctx context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(configColumns...).
		From("schedule_configs").
		Where(squirrel.Eq{"tenant_id": tenantID})

	if serviceID != nil {
		// service-specific запись приоритетнее tenant-wide (NULLS LAST после NOT NULL)
		selectBuilder = selectBuilder.
			Where(squirrel.Or{
				squirrel.Eq{"service_id": *serviceID},
				squirrel.Eq{"service_id": nil},
			}).
			OrderBy("service_id ASC NULLS LAST")
	} else {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": nil})
	}

	query, args, err := selectBuilder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithHierarchy - build select query: %v", ErrBuildQuery, err)
	}

	cfg, err := r.scanConfig(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithHierarchy - scan config: %v", ErrScanRow, err)
	}

	return cfg, nil
}

// Upsert создает или обновляет конфигурацию для пары (tenant, service)
func (r *Repository) Upsert(ctx context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_configs").
		Columns(
			"tenant_id",
			"service_id",
			"scheduling_mode",
			"auto_assign_employees",
			"lock_ttl_seconds",
			"advance_booking_days",
			"min_booking_notice_minutes",
		).
		Values(
			config.TenantID,
			config.ServiceID,
			config.SchedulingMode,
			config.AutoAssignEmployees,
			config.LockTTLSeconds,
			config.AdvanceBookingDays,
			config.MinBookingNoticeMinutes,
		).
		Suffix(`ON CONFLICT (tenant_id, COALESCE(service_id, 0)) DO UPDATE SET
			scheduling_mode = EXCLUDED.scheduling_mode,
			auto_assign_employees = EXCLUDED.auto_assign_employees,
			lock_ttl_seconds = EXCLUDED.lock_ttl_seconds,
			advance_booking_days = EXCLUDED.advance_booking_days,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&config.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %v", ErrExecQuery, err)
	}

	config.CreatedAt = createdAt.Time
	config.UpdatedAt = updatedAt.Time

	return config, nil
}

// ListResourceMode возвращает все конфигурации в resource-driven режиме
// Используется ежедневной материализацией слотов
func (r *Repository) ListResourceMode(ctx context.Context) ([]*domain.ScheduleConfig, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(configColumns...).
		From("schedule_configs").
		Where(squirrel.Eq{"scheduling_mode": domain.ModeResource}).
		OrderBy("tenant_id ASC, service_id ASC NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListResourceMode - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListResourceMode - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var configs []*domain.ScheduleConfig
	for rows.Next() {
		cfg, err := r.scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListResourceMode - scan config: %v", ErrScanRow, err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListResourceMode - iterate rows: %v", ErrScanRow, err)
	}

	return configs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanConfig(row rowScanner) (*domain.ScheduleConfig, error) {
	var cfg domain.ScheduleConfig
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&cfg.ID,
		&cfg.TenantID,
		&cfg.ServiceID,
		&cfg.SchedulingMode,
		&cfg.AutoAssignEmployees,
		&cfg.LockTTLSeconds,
		&cfg.AdvanceBookingDays,
		&cfg.MinBookingNoticeMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.CreatedAt = createdAt.Time
	cfg.UpdatedAt = updatedAt.Time

	return &cfg, nil
}
