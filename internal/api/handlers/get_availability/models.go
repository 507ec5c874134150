package get_availability

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailability "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date          string                  `json:"date"`
	TenantID      int64                   `json:"tenantId"`
	ServiceID     int64                   `json:"serviceId"`
	Slots         []getAvailability.Slot  `json:"slots"`
	LockedSlotIDs []int64                 `json:"lockedSlotIds"`
	Shifts        []getAvailability.Shift `json:"shifts"`
}

// ToUseCaseRequest формирует запрос к use case из параметров HTTP запроса
func ToUseCaseRequest(
	userID int64,
	tenantID int64,
	serviceID int64,
	dateStr string,
	includeLockedStr string,
	includePastStr string,
	includeFullStr string,
) (*getAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	req := &getAvailability.Request{
		UserID:    userID,
		TenantID:  tenantID,
		ServiceID: serviceID,
		Date:      date,
	}

	if includeLockedStr != "" {
		if req.IncludeLocked, err = strconv.ParseBool(includeLockedStr); err != nil {
			return nil, err
		}
	}
	if includePastStr != "" {
		if req.IncludePast, err = strconv.ParseBool(includePastStr); err != nil {
			return nil, err
		}
	}
	if includeFullStr != "" {
		if req.IncludeFull, err = strconv.ParseBool(includeFullStr); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := resp.Slots
	if slots == nil {
		slots = []getAvailability.Slot{}
	}
	lockedIDs := resp.LockedSlotIDs
	if lockedIDs == nil {
		lockedIDs = []int64{}
	}
	shifts := resp.Shifts
	if shifts == nil {
		shifts = []getAvailability.Shift{}
	}

	return &AvailabilityResponse{
		Date:          resp.Date.Format(domain.DateFormat),
		TenantID:      resp.TenantID,
		ServiceID:     resp.ServiceID,
		Slots:         slots,
		LockedSlotIDs: lockedIDs,
		Shifts:        shifts,
	}
}
