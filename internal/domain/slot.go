package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Slot дискретная бронируемая единица времени
// Генерируется внешним процессом из шаблона Shift на конкретную дату
type Slot struct {
	ID                int64
	TenantID          int64
	ServiceID         int64
	ShiftID           int64
	SlotDate          time.Time
	StartTime         types.TimeString
	EndTime           types.TimeString
	TotalCapacity     int
	RemainingCapacity int
	EmployeeID        *int64 // NULL для слотов без привязки к сотруднику
	IsAvailable       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCapacity возвращает true, если в слоте остались свободные места
func (s *Slot) HasCapacity() bool {
	return s.RemainingCapacity > 0
}

// IsFull возвращает true, если все места слота заняты
func (s *Slot) IsFull() bool {
	return s.RemainingCapacity <= 0
}

// IsAssigned возвращает true, если слот привязан к конкретному сотруднику
func (s *Slot) IsAssigned() bool {
	return s.EmployeeID != nil
}

// StartsBefore возвращает true, если слот начинается раньше указанного времени
func (s *Slot) StartsBefore(t types.TimeString) bool {
	return s.StartTime.IsBefore(t)
}

// MatchesWeekday проверяет, что дата слота попадает в дни недели его шаблона
// Защита от протухших слотов после миграций или смены расписания шаблона
func (s *Slot) MatchesWeekday(shift *Shift) bool {
	return shift.AppliesOn(s.SlotDate)
}

// AnnotatedSlot слот с пометкой прошел/не прошел относительно текущего времени
// Используется, когда вызывающая сторона запросила показ прошедших слотов
type AnnotatedSlot struct {
	Slot   *Slot
	IsPast bool
}
