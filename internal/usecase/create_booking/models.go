package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модель запроса на создание бронирования
//
// Слоты задаются одним из двух способов:
//   - SlotIDs - явный список выбранных слотов;
//   - Quantity + Policy (+ Anchor) - подбор набора аллокатором
//     по текущей картине доступности.
type Request struct {
	UserID    int64
	TenantID  int64
	ServiceID int64
	Date      time.Time

	SlotIDs  []int64
	Quantity int
	Policy   string            // parallel | consecutive
	Anchor   *types.TimeString // Желаемое время начала для parallel

	// Токен держателя блокировок, полученный при Acquire
	HolderToken string

	// Ссылка на абонемент: каждая единица брони списывает одну единицу квоты
	SubscriptionID *int64

	Notes *string
}

// Response модель ответа с созданными бронированиями
type Response struct {
	Bookings []BookingView `json:"bookings"`
	GroupID  *string       `json:"groupId,omitempty"`
}

// BookingView представление одного созданного бронирования
type BookingView struct {
	ID              int64     `json:"id"`
	SlotID          int64     `json:"slotId"`
	EmployeeID      *int64    `json:"employeeId,omitempty"`
	BookingDate     string    `json:"bookingDate"`
	StartTime       string    `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toResponse(bookings []*domain.Booking) *Response {
	views := make([]BookingView, len(bookings))
	for i, b := range bookings {
		views[i] = BookingView{
			ID:              b.ID,
			SlotID:          b.SlotID,
			EmployeeID:      b.EmployeeID,
			BookingDate:     b.BookingDate.Format(domain.DateFormat),
			StartTime:       b.StartTime.String(),
			DurationMinutes: b.DurationMinutes,
			Status:          string(b.Status),
			CreatedAt:       b.CreatedAt,
		}
	}

	var groupID *string
	if len(bookings) > 0 {
		groupID = bookings[0].GroupID
	}

	return &Response{Bookings: views, GroupID: groupID}
}
