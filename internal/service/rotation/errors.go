package rotation

import "errors"

var (
	// ErrNoEligibleEmployees возвращается, когда список кандидатов пуст
	ErrNoEligibleEmployees = errors.New("rotation: no eligible employees")

	// ErrInternal возвращается при ошибках чтения курсора
	ErrInternal = errors.New("rotation: internal error")
)
