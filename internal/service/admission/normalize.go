package admission

import (
	"fmt"
	"strconv"
	"strings"
)

// Код допуска печатается на билете в двух представлениях:
//   - каноническая форма с разделителем: "ADM-1234" (QR)
//   - компактная форма фиксированной длины: "000000001234" (штрихкод,
//     12 цифр с ведущими нулями)
// Оба представления сводятся к ID бронирования до атомарной проверки

const (
	canonicalPrefix = "ADM-"
	compactLength   = 12
)

// Normalize приводит код допуска любого поддерживаемого представления
// к ID бронирования. Чистая функция без побочных эффектов
func Normalize(code string) (int64, error) {
	code = strings.TrimSpace(code)

	if strings.HasPrefix(code, canonicalPrefix) {
		return parseBookingID(strings.TrimPrefix(code, canonicalPrefix))
	}

	if len(code) == compactLength {
		return parseBookingID(code)
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidCode, code)
}

// CanonicalCode возвращает каноническое представление кода допуска бронирования
func CanonicalCode(bookingID int64) string {
	return fmt.Sprintf("%s%d", canonicalPrefix, bookingID)
}

// CompactCode возвращает компактное представление кода допуска бронирования
func CompactCode(bookingID int64) string {
	return fmt.Sprintf("%0*d", compactLength, bookingID)
}

func parseBookingID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	return id, nil
}
