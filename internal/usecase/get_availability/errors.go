package get_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("date cannot be in the past")

	// ErrDateTooFarInFuture возвращается, когда дата выходит за горизонт бронирования
	ErrDateTooFarInFuture = errors.New("date exceeds advance booking limit")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
