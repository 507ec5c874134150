package shift

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

var shiftColumns = []string{
	"id",
	"tenant_id",
	"service_id",
	"employee_id",
	"weekdays",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для чтения шаблонов доступности
// Шаблоны управляются внешней конфигурацией, движок их только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListActiveByService получает активные шаблоны услуги
func (r *Repository) ListActiveByService(ctx context.Context, tenantID, serviceID int64) ([]*domain.Shift, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(shiftColumns...).
		From("shifts").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByService - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveByService - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanShifts(rows)
}

// GetByIDs получает шаблоны по списку ID
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Shift, error) {
	if len(ids) == 0 {
		return []*domain.Shift{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(shiftColumns...).
		From("shifts").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanShifts(rows)
}

func (r *Repository) scanShifts(rows *sql.Rows) ([]*domain.Shift, error) {
	shifts := make([]*domain.Shift, 0)

	for rows.Next() {
		var s domain.Shift
		var weekdays pq.Int64Array
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&s.ID,
			&s.TenantID,
			&s.ServiceID,
			&s.EmployeeID,
			&weekdays,
			&s.IsActive,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanShifts - scan row: %v", ErrScanRow, err)
		}

		s.Weekdays = make([]int, len(weekdays))
		for i, d := range weekdays {
			s.Weekdays[i] = int(d)
		}
		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time

		shifts = append(shifts, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanShifts - rows error: %v", ErrScanRow, err)
	}

	return shifts, nil
}
