package resourceservice

import "errors"

var (
	// ErrTimeout возвращается, когда ResourceService не ответил за отведенное время
	// Вызывающая сторона обязана трактовать это как "шаблонов нет",
	// а не ронять запрос доступности
	ErrTimeout = errors.New("resourceservice: request timed out")

	// ErrInvalidResponse возвращается при некорректном ответе сервиса
	ErrInvalidResponse = errors.New("resourceservice: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("resourceservice: internal error")
)
