package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.TenantID <= 0 {
		return fmt.Errorf("%w: tenantID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	hasExplicit := len(req.SlotIDs) > 0
	hasQuantity := req.Quantity > 0

	if !hasExplicit && !hasQuantity {
		return fmt.Errorf("%w: either slotIds or quantity is required", ErrInvalidInput)
	}
	if hasExplicit && hasQuantity {
		return fmt.Errorf("%w: slotIds and quantity are mutually exclusive", ErrInvalidInput)
	}

	units := len(req.SlotIDs)
	if hasQuantity {
		units = req.Quantity
		if req.Policy != domain.PolicyParallel && req.Policy != domain.PolicyConsecutive {
			return fmt.Errorf("%w: policy must be %q or %q",
				ErrInvalidInput, domain.PolicyParallel, domain.PolicyConsecutive)
		}
		if req.Anchor != nil {
			if err := req.Anchor.Validate(); err != nil {
				return fmt.Errorf("%w: invalid anchor time: %v", ErrInvalidInput, err)
			}
		}
	}

	if units > domain.MaxBookingQuantity {
		return fmt.Errorf("%w: at most %d units per booking", ErrInvalidInput, domain.MaxBookingQuantity)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateDate проверяет, что дата подходит для бронирования
func validateDate(bookingDate time.Time, now time.Time, advanceBookingDays int) error {
	if isDateInPast(bookingDate, now) {
		return ErrInvalidDate
	}

	if advanceBookingDays == 0 {
		return nil
	}

	maxDate := dateOnly(now).AddDate(0, 0, advanceBookingDays)
	if dateOnly(bookingDate).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceBookingDays)
	}

	return nil
}

// validateBookingTime проверяет, что бронирование не нарушает minBookingNoticeMinutes
func validateBookingTime(
	bookingDate time.Time,
	startTime types.TimeString,
	now time.Time,
	minBookingNoticeMinutes int,
) error {
	// Для будущих дат проверка не нужна
	if !isSameDay(bookingDate, now) {
		return nil
	}

	currentTime := types.NewTimeString(now)
	minAllowedTime, err := currentTime.AddMinutes(minBookingNoticeMinutes)
	if err != nil {
		return fmt.Errorf("%w: failed to calculate min allowed time: %v", ErrInternal, err)
	}

	if startTime.IsBefore(minAllowedTime) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minBookingNoticeMinutes)
	}

	return nil
}

// validateSlotsBookable проверяет загруженные под FOR UPDATE слоты:
// все найдены, доступны, на запрошенную дату и с запасом мест
func validateSlotsBookable(slots []*domain.Slot, requestedIDs []int64, date time.Time) error {
	if len(slots) != len(requestedIDs) {
		return fmt.Errorf("%w: %d of %d slots not found", ErrSlotNotAvailable, len(requestedIDs)-len(slots), len(requestedIDs))
	}

	for _, slot := range slots {
		if !slot.IsAvailable {
			return fmt.Errorf("%w: slot %d is disabled", ErrSlotNotAvailable, slot.ID)
		}
		if !isSameDay(slot.SlotDate, date) {
			return fmt.Errorf("%w: slot %d is not on the requested date", ErrSlotNotAvailable, slot.ID)
		}
		if slot.IsFull() {
			return fmt.Errorf("%w: slot %d has no remaining capacity", ErrSlotNotAvailable, slot.ID)
		}
	}

	return nil
}

// validateSlotWeekdays сверяет дату каждого слота с днями недели его шаблона
func validateSlotWeekdays(slots []*domain.Slot, shifts []*domain.Shift) error {
	byID := make(map[int64]*domain.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}

	for _, slot := range slots {
		shift, ok := byID[slot.ShiftID]
		if !ok {
			return fmt.Errorf("%w: slot %d references unknown shift", ErrSlotNotAvailable, slot.ID)
		}
		if !slot.MatchesWeekday(shift) {
			return fmt.Errorf("%w: slot %d no longer matches its shift weekdays", ErrSlotNotAvailable, slot.ID)
		}
	}

	return nil
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	return dateOnly(date).Before(dateOnly(now))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
