package admission

import (
	"context"
	"errors"
	"fmt"
	"time"

	admissionRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/admission"
)

// ScanResult результат сканирования кода допуска
// При повторном сканировании содержит детали первого: кто и когда использовал код
type ScanResult struct {
	BookingID int64
	ScannedAt time.Time
	ScannedBy int64
}

// Service сервис проверки кодов допуска
// Гарантирует ровно одно успешное сканирование на бронирование
type Service struct {
	repo   AdmissionRepository
	logger Logger
}

// NewService создает новый экземпляр сервиса кодов допуска
func NewService(repo AdmissionRepository, logger Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Consume нормализует код и атомарно помечает его использованным
// Повторное сканирование возвращает ErrAlreadyConsumed вместе с деталями
// первого сканирования - ресепшен должен видеть, кто и когда использовал код
func (s *Service) Consume(ctx context.Context, code string, actorID int64) (*ScanResult, error) {
	bookingID, err := Normalize(code)
	if err != nil {
		s.logger.Warn("Consume: invalid admission code %q", code)
		return nil, err
	}

	scan, err := s.repo.Consume(ctx, bookingID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, admissionRepo.ErrAlreadyConsumed):
			s.logger.Warn("Consume: booking id=%d already scanned at %s by actor=%d",
				bookingID, scan.ScannedAt.Format(time.RFC3339), scan.ScannedBy)
			return &ScanResult{
				BookingID: scan.BookingID,
				ScannedAt: scan.ScannedAt,
				ScannedBy: scan.ScannedBy,
			}, ErrAlreadyConsumed

		case errors.Is(err, admissionRepo.ErrBookingNotFound):
			s.logger.Warn("Consume: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound

		default:
			s.logger.Error("Consume: repository error for booking id=%d: %v", bookingID, err)
			return nil, fmt.Errorf("%w: Consume - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Consume: booking id=%d admitted by actor=%d", bookingID, actorID)

	return &ScanResult{
		BookingID: scan.BookingID,
		ScannedAt: scan.ScannedAt,
		ScannedBy: scan.ScannedBy,
	}, nil
}
