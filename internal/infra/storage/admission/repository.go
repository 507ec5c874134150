package admission

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/psqlbuilder"
)

// Repository репозиторий состояния кодов допуска
// Работает с колонками scanned/scanned_at/scanned_by таблицы bookings
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория кодов допуска
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Consume атомарно помечает код допуска использованным
// Единственный UPDATE с предикатом scanned = false: из двух конкурентных
// сканирований ровно одно затронет строку. Проигравший получает
// ErrAlreadyConsumed вместе с деталями первого сканирования
func (r *Repository) Consume(ctx context.Context, bookingID, actorID int64) (*domain.AdmissionScan, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("scanned", true).
		Set("scanned_at", squirrel.Expr("NOW()")).
		Set("scanned_by", actorID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": bookingID}).
		Where(squirrel.Eq{"scanned": false}).
		Suffix("RETURNING scanned_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Consume - build update query: %v", ErrBuildQuery, err)
	}

	var scannedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&scannedAt)

	if err == sql.ErrNoRows {
		// Условие не сработало: либо код уже использован, либо бронирования нет
		original, getErr := r.getScanState(ctx, bookingID)
		if getErr != nil {
			return nil, getErr
		}
		return original, ErrAlreadyConsumed
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Consume - execute update: %v", ErrExecQuery, err)
	}

	return &domain.AdmissionScan{
		BookingID: bookingID,
		ScannedAt: scannedAt.Time,
		ScannedBy: actorID,
	}, nil
}

// getScanState читает детали уже состоявшегося сканирования для аудита
func (r *Repository) getScanState(ctx context.Context, bookingID int64) (*domain.AdmissionScan, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("scanned", "scanned_at", "scanned_by").
		From("bookings").
		Where(squirrel.Eq{"id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getScanState - build select query: %v", ErrBuildQuery, err)
	}

	var scanned bool
	var scannedAt sql.NullTime
	var scannedBy sql.NullInt64

	err = executor.QueryRowContext(ctx, query, args...).Scan(&scanned, &scannedAt, &scannedBy)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getScanState - scan row: %v", ErrScanRow, err)
	}

	if !scanned {
		// Строка есть, но код не сканировался - Consume проиграл не гонке,
		// а какой-то другой причине. На практике недостижимо
		return nil, fmt.Errorf("%w: getScanState - inconsistent scan state for booking %d", ErrExecQuery, bookingID)
	}

	return &domain.AdmissionScan{
		BookingID: bookingID,
		ScannedAt: scannedAt.Time,
		ScannedBy: scannedBy.Int64,
	}, nil
}
