package domain

import "time"

// Entitlement остаток предоплаченной квоты по абонементу
// для конкретной услуги. Инвариант: 0 <= UsedQuantity <= OriginalQuantity
type Entitlement struct {
	SubscriptionID   int64
	ServiceID        int64
	OriginalQuantity int
	UsedQuantity     int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Remaining возвращает оставшуюся квоту
func (e *Entitlement) Remaining() int {
	return e.OriginalQuantity - e.UsedQuantity
}

// IsExhausted возвращает true, если квота исчерпана
func (e *Entitlement) IsExhausted() bool {
	return e.Remaining() <= 0
}
