package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("date cannot be in the past")

	// ErrDateTooFarInFuture возвращается, когда дата выходит за горизонт бронирования
	ErrDateTooFarInFuture = errors.New("date exceeds advance booking limit")

	// ErrTooLateToBook возвращается при нарушении минимального времени
	// до начала бронирования
	ErrTooLateToBook = errors.New("too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда слот занят, недоступен
	// или не существует. Под этой же ошибкой проигрывает второй из двух
	// конкурентных запросов на последнее место
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrSlotLocked возвращается, когда слот удерживается другим клиентом
	ErrSlotLocked = errors.New("slot is locked by another client")

	// ErrInsufficientSlots возвращается, когда подходящего набора слотов
	// для группового бронирования не нашлось. Частичное бронирование не делается
	ErrInsufficientSlots = errors.New("insufficient slots for requested quantity")

	// ErrEntitlementExhausted возвращается при исчерпанной квоте абонемента
	ErrEntitlementExhausted = errors.New("entitlement exhausted")

	// ErrEntitlementNotFound возвращается, когда квота по абонементу не найдена
	ErrEntitlementNotFound = errors.New("entitlement not found")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
