package rotation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий курсора ротации сотрудников
// Курсор - одна строка на (tenant, service): последний сотрудник,
// которому досталось подтвержденное бронирование
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория курсора ротации
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetCursor возвращает ID последнего назначенного сотрудника
// nil - ротация для услуги еще не начиналась
func (r *Repository) GetCursor(ctx context.Context, tenantID, serviceID int64) (*int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("last_employee_id").
		From("rotation_cursors").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCursor - build select query: %v", ErrBuildQuery, err)
	}

	var lastEmployeeID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&lastEmployeeID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCursor - scan cursor: %v", ErrScanRow, err)
	}

	return &lastEmployeeID, nil
}

// Advance передвигает курсор на указанного сотрудника (UPSERT)
// Вызывается только внутри транзакции создания бронирования:
// просмотр доступности курсор не двигает, иначе брошенные сессии
// просмотра ломали бы честность ротации
func (r *Repository) Advance(ctx context.Context, tenantID, serviceID, employeeID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("rotation_cursors").
		Columns("tenant_id", "service_id", "last_employee_id").
		Values(tenantID, serviceID, employeeID).
		Suffix("ON CONFLICT (tenant_id, service_id) DO UPDATE SET last_employee_id = EXCLUDED.last_employee_id, updated_at = NOW()").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Advance - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Advance - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}
