package admission

import "errors"

var (
	// ErrInvalidCode возвращается при коде, не соответствующем
	// ни одному из поддерживаемых форматов
	ErrInvalidCode = errors.New("admission: invalid admission code")

	// ErrBookingNotFound возвращается, когда бронирование с таким кодом не найдено
	ErrBookingNotFound = errors.New("admission: booking not found")

	// ErrAlreadyConsumed возвращается при повторном сканировании кода
	// Вместе с ошибкой возвращаются детали первого сканирования для аудита
	ErrAlreadyConsumed = errors.New("admission: code already consumed")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("admission: internal error")
)
