package create_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// CreateBookingRequest HTTP request model
//
// Слоты задаются либо явным списком slotIds, либо парой quantity+policy
// (опционально с anchorTime для parallel)
type CreateBookingRequest struct {
	TenantID       int64   `json:"tenantId"`
	ServiceID      int64   `json:"serviceId"`
	Date           string  `json:"date"` // "2026-08-26"
	SlotIDs        []int64 `json:"slotIds,omitempty"`
	Quantity       int     `json:"quantity,omitempty"`
	Policy         string  `json:"policy,omitempty"`     // parallel | consecutive
	AnchorTime     *string `json:"anchorTime,omitempty"` // "10:00"
	HolderToken    string  `json:"holderToken,omitempty"`
	SubscriptionID *int64  `json:"subscriptionId,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	var anchor *types.TimeString
	if r.AnchorTime != nil {
		parsed, err := types.NewTimeStringFromString(*r.AnchorTime)
		if err != nil {
			return nil, err
		}
		anchor = &parsed
	}

	return &createBooking.Request{
		UserID:         userID,
		TenantID:       r.TenantID,
		ServiceID:      r.ServiceID,
		Date:           date,
		SlotIDs:        r.SlotIDs,
		Quantity:       r.Quantity,
		Policy:         r.Policy,
		Anchor:         anchor,
		HolderToken:    r.HolderToken,
		SubscriptionID: r.SubscriptionID,
		Notes:          r.Notes,
	}, nil
}
