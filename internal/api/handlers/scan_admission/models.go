package scan_admission

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/service/admission"
)

// ScanRequest HTTP request model
type ScanRequest struct {
	Code string `json:"code"`
}

// ScanResponse HTTP response model успешного сканирования
type ScanResponse struct {
	BookingID int64  `json:"bookingId"`
	ScannedAt string `json:"scannedAt"` // ISO 8601 format
	ScannedBy int64  `json:"scannedBy"`
}

// AlreadyScannedResponse HTTP response model повторного сканирования
// Содержит данные первого успешного сканирования
type AlreadyScannedResponse struct {
	Error     string `json:"error"`
	BookingID int64  `json:"bookingId"`
	ScannedAt string `json:"scannedAt"` // ISO 8601 format
	ScannedBy int64  `json:"scannedBy"`
}

// FromScanResult конвертирует результат сервиса в HTTP response
func FromScanResult(result *admission.ScanResult) *ScanResponse {
	return &ScanResponse{
		BookingID: result.BookingID,
		ScannedAt: result.ScannedAt.Format(time.RFC3339),
		ScannedBy: result.ScannedBy,
	}
}
