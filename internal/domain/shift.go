package domain

import "time"

// Shift повторяющийся шаблон доступности
// Один шаблон порождает множество слотов - по одному набору на каждую
// подходящую дату. Weekdays хранит дни недели в нотации time.Weekday (0 = воскресенье)
type Shift struct {
	ID         int64
	TenantID   int64
	ServiceID  int64
	EmployeeID *int64 // NULL для шаблонов без привязки к сотруднику
	Weekdays   []int
	IsActive   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliesOn возвращает true, если шаблон действует в указанную дату
func (s *Shift) AppliesOn(date time.Time) bool {
	weekday := int(date.Weekday())
	for _, d := range s.Weekdays {
		if d == weekday {
			return true
		}
	}
	return false
}
