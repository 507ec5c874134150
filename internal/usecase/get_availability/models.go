package get_availability

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса доступности услуги на дату
type Request struct {
	UserID    int64     // ID пользователя (для логирования, не влияет на результат)
	TenantID  int64     // ID тенанта
	ServiceID int64     // ID услуги
	Date      time.Time // Дата, на которую запрашивается доступность

	// Флаги, расширяющие выдачу
	IncludeLocked bool // Показывать слоты под активной блокировкой
	IncludePast   bool // Показывать прошедшие слоты с пометкой IsPast
	IncludeFull   bool // Показывать слоты без свободных мест
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date      time.Time // Дата, на которую запрашивалась доступность
	TenantID  int64
	ServiceID int64
	Slots     []Slot // Доступные слоты, отсортированные по времени начала

	// Слоты под активной блокировкой - всегда раскрываются отдельно,
	// даже когда исключены из основной выдачи
	LockedSlotIDs []int64

	// Шаблоны, по которым собиралась выдача
	// В ресурсном режиме пуст: слоты приходят из материализации, не из шаблонов
	Shifts []Shift
}

// Slot модель слота в выдаче доступности
type Slot struct {
	ID                int64  `json:"id"`
	StartTime         string `json:"startTime"` // "10:00"
	EndTime           string `json:"endTime"`   // "11:00"
	EmployeeID        *int64 `json:"employeeId,omitempty"`
	RemainingCapacity int    `json:"remainingCapacity"`
	TotalCapacity     int    `json:"totalCapacity"`
	IsPast            bool   `json:"isPast,omitempty"` // Заполняется только при IncludePast
}

// Shift модель шаблона в выдаче доступности
type Shift struct {
	ID         int64  `json:"id"`
	EmployeeID *int64 `json:"employeeId,omitempty"`
	Weekdays   []int  `json:"weekdays"`
}

func toSlotView(s *domain.Slot, isPast bool) Slot {
	return Slot{
		ID:                s.ID,
		StartTime:         s.StartTime.String(),
		EndTime:           s.EndTime.String(),
		EmployeeID:        s.EmployeeID,
		RemainingCapacity: s.RemainingCapacity,
		TotalCapacity:     s.TotalCapacity,
		IsPast:            isPast,
	}
}

func toShiftViews(shifts []*domain.Shift) []Shift {
	result := make([]Shift, len(shifts))
	for i, s := range shifts {
		result[i] = Shift{
			ID:         s.ID,
			EmployeeID: s.EmployeeID,
			Weekdays:   s.Weekdays,
		}
	}
	return result
}
