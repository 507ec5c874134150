package allocation

import "errors"

var (
	// ErrInsufficientSlots возвращается, когда подобрать N слотов не удалось
	// Возвращается всегда целиком: частичный набор никогда не отдается,
	// чтобы вызывающая сторона не создала половину группового бронирования
	ErrInsufficientSlots = errors.New("allocation: insufficient available slots")

	// ErrUnknownPolicy возвращается при неизвестной политике подбора
	ErrUnknownPolicy = errors.New("allocation: unknown allocation policy")

	// ErrInvalidQuantity возвращается при количестве меньше 1
	ErrInvalidQuantity = errors.New("allocation: quantity must be positive")
)
