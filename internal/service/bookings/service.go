package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	entitlementRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/entitlement"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo     BookingRepository
	slotRepo        SlotRepository
	entitlementRepo EntitlementRepository
	txManager       TransactionManager
	publisher       EventPublisher
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	entitlementRepo EntitlementRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:     bookingRepo,
		slotRepo:        slotRepo,
		entitlementRepo: entitlementRepo,
		txManager:       txManager,
		publisher:       publisher,
		logger:          logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только своё бронирование, тенант - любое своё
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.UserID != userID {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetGroup получает все бронирования группового заказа
// Доступно владельцу группы
func (s *Service) GetGroup(ctx context.Context, groupID string, userID int64) (*models.BookingListResponse, error) {
	s.logger.Info("GetGroup: fetching bookings for group=%s, user=%d", groupID, userID)

	bookings, err := s.bookingRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		s.logger.Error("GetGroup: repository error for group=%s: %v", groupID, err)
		return nil, fmt.Errorf("%w: GetGroup - repository error: %v", ErrInternal, err)
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}
	if bookings[0].UserID != userID {
		s.logger.Warn("GetGroup: access denied for user=%d to group=%s", userID, groupID)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBookingList(bookings), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetTenantBookings получает бронирования тенанта с гибкой фильтрацией
// Поддерживает фильтрацию по услуге, периоду, статусу и включению
// неактивных бронирований. Авторизация тенанта выполняется на уровне шлюза
func (s *Service) GetTenantBookings(ctx context.Context, req *models.GetTenantBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetTenantBookings: fetching bookings for tenant=%d", req.TenantID)
	if req.ServiceID != nil {
		logMsg += fmt.Sprintf(", service=%d", *req.ServiceID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s",
			req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetTenantBookings: invalid filter for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByTenantWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetTenantBookings: repository error for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: GetTenantBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetTenantBookings: successfully fetched %d bookings for tenant=%d", len(bookings), req.TenantID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и возвращает занятые им ресурсы
// В одной транзакции: смена статуса, возврат места в слот и возврат
// единицы квоты абонемента, если бронирование было покрыто пакетом.
// Событие отмены публикуется после коммита
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	var cancelStatus domain.BookingStatus
	switch {
	case req.TenantActor:
		cancelStatus = domain.StatusCancelledByTenant
	case booking.UserID == req.UserID:
		cancelStatus = domain.StatusCancelledByUser
	default:
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return ErrAccessDenied
	}

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		// Предикат статуса в UPDATE - единственный арбитр повторной отмены:
		// прочитанный выше снимок мог устареть между чтением и транзакцией
		if err := s.bookingRepo.Cancel(ctx, bookingID, cancelStatus, req.CancellationReason); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		if err := s.slotRepo.IncrementCapacity(ctx, booking.SlotID); err != nil {
			// Слот уже полон - место не возвращаем, но отмену не блокируем
			if !errors.Is(err, slotRepo.ErrCapacityFull) {
				return fmt.Errorf("restore slot capacity: %w", err)
			}
			s.logger.Warn("Cancel: slot id=%d already at full capacity", booking.SlotID)
		}

		if booking.HasSubscription() {
			if err := s.entitlementRepo.Refund(ctx, *booking.SubscriptionID, booking.ServiceID); err != nil {
				if !errors.Is(err, entitlementRepo.ErrNothingToRefund) {
					return fmt.Errorf("refund entitlement: %w", err)
				}
				s.logger.Warn("Cancel: entitlement sub=%d service=%d has nothing to refund",
					*booking.SubscriptionID, booking.ServiceID)
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		if errors.Is(err, bookingRepo.ErrCannotCancel) {
			s.logger.Warn("Cancel: booking id=%d already left cancellable state", bookingID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: transaction failed for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, err)
	}

	s.publisher.PublishBookingCancelled(ctx, events.BookingCancelledEvent{
		BookingID:   bookingID,
		TenantID:    booking.TenantID,
		UserID:      booking.UserID,
		CancelledAt: time.Now().UTC(),
	})

	s.logger.Info("Cancel: successfully cancelled booking id=%d with status=%s", bookingID, cancelStatus)
	return nil
}

// UpdateStatus обновляет статус бронирования
// Используется тенантом для перевода брони по жизненному циклу
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, status string) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s", bookingID, status)

	newStatus, err := models.ToDomainBookingStatus(status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", status, bookingID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}
