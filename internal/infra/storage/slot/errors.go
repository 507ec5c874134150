package slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrNoCapacity возвращается, когда в слоте не осталось свободных мест
	// (условный декремент не затронул ни одной строки)
	ErrNoCapacity = errors.New("slot.repository: no remaining capacity")

	// ErrCapacityFull возвращается при попытке вернуть место в слот,
	// у которого remaining_capacity уже равен total_capacity
	ErrCapacityFull = errors.New("slot.repository: capacity already at maximum")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
