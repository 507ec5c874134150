package acquire_lock

import "time"

// AcquireLockRequest HTTP request model
// HolderToken опционален - при отсутствии генерируется сервером
// и возвращается в ответе
type AcquireLockRequest struct {
	TenantID    int64  `json:"tenantId"`
	ServiceID   *int64 `json:"serviceId,omitempty"`
	HolderToken string `json:"holderToken,omitempty"`
}

// AcquireLockResponse HTTP response model
type AcquireLockResponse struct {
	SlotID      int64  `json:"slotId"`
	HolderToken string `json:"holderToken"`
	TTLSeconds  int    `json:"ttlSeconds"`
	ExpiresAt   string `json:"expiresAt"` // ISO 8601 format
}

func toResponse(slotID int64, holder string, ttl time.Duration, now time.Time) *AcquireLockResponse {
	return &AcquireLockResponse{
		SlotID:      slotID,
		HolderToken: holder,
		TTLSeconds:  int(ttl.Seconds()),
		ExpiresAt:   now.Add(ttl).Format(time.RFC3339),
	}
}
