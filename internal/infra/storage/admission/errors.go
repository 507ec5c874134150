package admission

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование с таким кодом не найдено
	ErrBookingNotFound = errors.New("admission.repository: booking not found")

	// ErrAlreadyConsumed возвращается, когда код допуска уже был отсканирован
	// Детали первого сканирования возвращаются отдельно для аудита
	ErrAlreadyConsumed = errors.New("admission.repository: admission code already consumed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("admission.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("admission.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("admission.repository: failed to scan row")
)
