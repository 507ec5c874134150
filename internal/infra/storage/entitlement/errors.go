package entitlement

import "errors"

var (
	// ErrEntitlementNotFound возвращается, когда квота по абонементу и услуге не найдена
	ErrEntitlementNotFound = errors.New("entitlement.repository: entitlement not found")

	// ErrExhausted возвращается, когда квота исчерпана
	// (условный декремент не затронул ни одной строки)
	ErrExhausted = errors.New("entitlement.repository: entitlement exhausted")

	// ErrNothingToRefund возвращается при попытке вернуть единицу квоты,
	// когда used_quantity уже равен нулю
	ErrNothingToRefund = errors.New("entitlement.repository: nothing to refund")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("entitlement.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("entitlement.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("entitlement.repository: failed to scan row")
)
