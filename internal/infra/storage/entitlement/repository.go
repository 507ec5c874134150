package entitlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий квот предоплаченных пакетов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория квот
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает квоту по паре (абонемент, услуга)
func (r *Repository) Get(ctx context.Context, subscriptionID, serviceID int64) (*domain.Entitlement, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"subscription_id",
		"service_id",
		"original_quantity",
		"used_quantity",
		"created_at",
		"updated_at",
	).
		From("entitlements").
		Where(squirrel.Eq{"subscription_id": subscriptionID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var e domain.Entitlement
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&e.SubscriptionID,
		&e.ServiceID,
		&e.OriginalQuantity,
		&e.UsedQuantity,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrEntitlementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan entitlement: %v", ErrScanRow, err)
	}

	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time

	return &e, nil
}

// Consume атомарно списывает одну единицу квоты
// Единственный UPDATE с предикатом used_quantity < original_quantity:
// при остатке K из K+N конкурентных списаний ровно K затронут строку,
// остальные получат ErrExhausted. Вызывается только внутри транзакции
// создания бронирования - списание и вставка бронирования фиксируются вместе
func (r *Repository) Consume(ctx context.Context, subscriptionID, serviceID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("entitlements").
		Set("used_quantity", squirrel.Expr("used_quantity + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"subscription_id": subscriptionID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.Expr("used_quantity < original_quantity")).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Consume - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Consume - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Consume - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrExhausted
	}

	return nil
}

// Refund атомарно возвращает одну единицу квоты (отмена бронирования)
// Предикат used_quantity > 0 защищает от двойного возврата
func (r *Repository) Refund(ctx context.Context, subscriptionID, serviceID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("entitlements").
		Set("used_quantity", squirrel.Expr("used_quantity - 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"subscription_id": subscriptionID}).
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.Gt{"used_quantity": 0}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Refund - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Refund - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Refund - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrNothingToRefund
	}

	return nil
}
