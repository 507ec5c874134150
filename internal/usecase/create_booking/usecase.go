package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	entitlementRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/entitlement"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
	resourceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/resourceservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/allocation"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// UseCase use case создания бронирования
//
// Вся запись идет в одной сериализуемой транзакции: списание мест,
// списание квоты абонемента, вставка строк бронирования и сдвиг курсора
// ротации фиксируются или откатываются вместе. Любая нехватка проваливает
// бронирование целиком - частичных броней не бывает
type UseCase struct {
	slotRepo        SlotRepository
	shiftRepo       ShiftRepository
	bookingRepo     BookingRepository
	entitlementRepo EntitlementRepository
	configResolver  ConfigResolver
	allocator       Allocator
	rotation        RotationService
	locker          SlotLocker
	publisher       EventPublisher
	resourceClient  ResourceServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	shiftRepo ShiftRepository,
	bookingRepo BookingRepository,
	entitlementRepo EntitlementRepository,
	configResolver ConfigResolver,
	allocator Allocator,
	rotationSvc RotationService,
	locker SlotLocker,
	publisher EventPublisher,
	resourceClient ResourceServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:        slotRepo,
		shiftRepo:       shiftRepo,
		bookingRepo:     bookingRepo,
		entitlementRepo: entitlementRepo,
		configResolver:  configResolver,
		allocator:       allocator,
		rotation:        rotationSvc,
		locker:          locker,
		publisher:       publisher,
		resourceClient:  resourceClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, tenant=%d, service=%d, date=%s, slots=%v, quantity=%d",
		req.UserID, req.TenantID, req.ServiceID, req.Date.Format(domain.DateFormat), req.SlotIDs, req.Quantity)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Эффективная конфигурация расписания
	config, err := uc.configResolver.Resolve(ctx, req.TenantID, ptr.Ptr(req.ServiceID))
	if err != nil {
		uc.logger.Error("CreateBooking: failed to resolve config: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve config: %v", ErrInternal, err)
	}

	// 3. Дата внутри окна бронирования
	if err := validateDate(req.Date, now, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	// 4. Целевые слоты: явный список либо подбор аллокатором
	targetIDs := req.SlotIDs
	if len(targetIDs) == 0 {
		targetIDs, err = uc.allocateSlots(ctx, req, config)
		if err != nil {
			return nil, err
		}
	}

	// 5. Чужие блокировки отвергают запрос до входа в транзакцию
	if err := uc.validateLockHolds(ctx, targetIDs, req.HolderToken); err != nil {
		return nil, err
	}

	// 6. Сериализуемая транзакция: все или ничего
	var created []*domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = uc.bookInTx(txCtx, req, config, targetIDs, now)
		return txErr
	})
	if err != nil {
		if isBusinessError(err) {
			uc.logger.Warn("CreateBooking: rejected: %v", err)
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	// 7. Блокировки своё отработали - снимаем, не дожидаясь истечения TTL
	uc.releaseLocks(ctx, targetIDs, req.HolderToken)

	// 8. Событие о фиксации - строго best-effort, бронь уже в БД
	uc.publisher.PublishBookingCreated(ctx, events.NewBookingCreatedEvent(created))

	uc.logger.Info("CreateBooking: successfully created %d booking(s) for user=%d", len(created), req.UserID)
	return toResponse(created), nil
}

// bookInTx выполняет шаги бронирования внутри транзакции
func (uc *UseCase) bookInTx(
	ctx context.Context,
	req *Request,
	config *domain.ScheduleConfig,
	targetIDs []int64,
	now time.Time,
) ([]*domain.Booking, error) {
	// Слоты под FOR UPDATE: конкурирующие транзакции выстраиваются в очередь
	slots, err := uc.slotRepo.GetByIDs(ctx, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	if err := validateSlotsBookable(slots, targetIDs, req.Date); err != nil {
		return nil, err
	}

	// Минимальное время до начала проверяется по самому раннему слоту
	earliest := slots[0].StartTime
	for _, slot := range slots[1:] {
		if slot.StartTime.IsBefore(earliest) {
			earliest = slot.StartTime
		}
	}
	if err := validateBookingTime(req.Date, earliest, now, config.MinBookingNoticeMinutes); err != nil {
		return nil, err
	}

	// Сверка дня недели со шаблоном нужна только в шаблонном режиме
	if !config.IsResourceDriven() {
		shiftIDs := make([]int64, 0, len(slots))
		seen := make(map[int64]bool)
		for _, slot := range slots {
			if !seen[slot.ShiftID] {
				seen[slot.ShiftID] = true
				shiftIDs = append(shiftIDs, slot.ShiftID)
			}
		}
		shifts, err := uc.shiftRepo.GetByIDs(ctx, shiftIDs)
		if err != nil {
			return nil, fmt.Errorf("load shifts: %w", err)
		}
		if err := validateSlotWeekdays(slots, shifts); err != nil {
			return nil, err
		}
	}

	// Условное списание мест: на последнем месте из двух конкурентов
	// выигрывает ровно один
	for _, slot := range slots {
		if err := uc.slotRepo.DecrementCapacity(ctx, slot.ID); err != nil {
			if errors.Is(err, slotRepo.ErrNoCapacity) {
				return nil, fmt.Errorf("%w: slot %d was taken", ErrSlotNotAvailable, slot.ID)
			}
			return nil, fmt.Errorf("decrement capacity: %w", err)
		}
	}

	// Квота абонемента списывается по единице на каждый слот группы
	if req.SubscriptionID != nil {
		for range slots {
			if err := uc.entitlementRepo.Consume(ctx, *req.SubscriptionID, req.ServiceID); err != nil {
				if errors.Is(err, entitlementRepo.ErrExhausted) {
					return nil, ErrEntitlementExhausted
				}
				if errors.Is(err, entitlementRepo.ErrEntitlementNotFound) {
					return nil, ErrEntitlementNotFound
				}
				return nil, fmt.Errorf("consume entitlement: %w", err)
			}
		}
	}

	var groupID *string
	if len(slots) > 1 {
		groupID = ptr.Ptr(uuid.NewString())
	}

	created := make([]*domain.Booking, 0, len(slots))
	for _, slot := range slots {
		booking, err := uc.bookingRepo.Create(ctx, &domain.Booking{
			TenantID:        req.TenantID,
			UserID:          req.UserID,
			ServiceID:       req.ServiceID,
			SlotID:          slot.ID,
			EmployeeID:      slot.EmployeeID,
			BookingDate:     req.Date,
			StartTime:       slot.StartTime,
			DurationMinutes: slotDuration(slot),
			Status:          domain.StatusConfirmed,
			SubscriptionID:  req.SubscriptionID,
			GroupID:         groupID,
			Notes:           req.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		created = append(created, booking)
	}

	// Курсор ротации двигается только здесь - при фиксации, не при просмотре
	if config.AutoAssignEmployees && slots[0].EmployeeID != nil {
		if err := uc.rotation.CommitAssignment(ctx, req.TenantID, req.ServiceID, *slots[0].EmployeeID); err != nil {
			return nil, fmt.Errorf("advance rotation cursor: %w", err)
		}
	}

	return created, nil
}

// allocateSlots подбирает набор слотов по количеству и политике,
// исходя из текущей картины доступности
func (uc *UseCase) allocateSlots(ctx context.Context, req *Request, config *domain.ScheduleConfig) ([]int64, error) {
	candidates, err := uc.candidateSlots(ctx, req, config)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to gather candidate slots: %v", err)
		return nil, fmt.Errorf("%w: gather candidates: %v", ErrInternal, err)
	}

	// Слоты под чужими блокировками для подбора невидимы
	ids := make([]int64, len(candidates))
	for i, slot := range candidates {
		ids[i] = slot.ID
	}
	locked, err := uc.locker.LockedSet(ctx, ids)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to read slot locks: %v", err)
		return nil, fmt.Errorf("%w: read locks: %v", ErrInternal, err)
	}
	free := make([]*domain.Slot, 0, len(candidates))
	for _, slot := range candidates {
		if holder, ok := locked[slot.ID]; ok && holder != req.HolderToken {
			continue
		}
		free = append(free, slot)
	}

	chosen, err := uc.allocator.Allocate(free, req.Quantity, req.Policy, req.Anchor)
	if err != nil {
		if errors.Is(err, allocation.ErrInsufficientSlots) {
			uc.logger.Warn("CreateBooking: allocation failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInsufficientSlots, err)
		}
		return nil, fmt.Errorf("%w: invalid allocation request: %v", ErrInvalidInput, err)
	}

	result := make([]int64, len(chosen))
	for i, slot := range chosen {
		result[i] = slot.ID
	}
	return result, nil
}

// candidateSlots собирает доступные слоты услуги на дату в зависимости от режима
func (uc *UseCase) candidateSlots(ctx context.Context, req *Request, config *domain.ScheduleConfig) ([]*domain.Slot, error) {
	if config.IsResourceDriven() {
		ids, err := uc.resourceClient.MaterializeSlots(ctx, req.TenantID, req.ServiceID, req.Date)
		if err != nil {
			if errors.Is(err, resourceClient.ErrTimeout) {
				return []*domain.Slot{}, nil
			}
			return nil, err
		}
		if len(ids) == 0 {
			return []*domain.Slot{}, nil
		}
		slots, err := uc.slotRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		result := make([]*domain.Slot, 0, len(slots))
		for _, slot := range slots {
			if slot.IsAvailable && slot.HasCapacity() {
				result = append(result, slot)
			}
		}
		return result, nil
	}

	shifts, err := uc.shiftRepo.ListActiveByService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return []*domain.Slot{}, nil
	}
	shiftIDs := make([]int64, len(shifts))
	for i, shift := range shifts {
		shiftIDs[i] = shift.ID
	}
	return uc.slotRepo.ListForDate(ctx, shiftIDs, req.Date, true, true)
}

// validateLockHolds отвергает бронирование слота, удерживаемого другим клиентом
// Свободный слот бронировать можно: блокировка - опциональная вежливость UI
func (uc *UseCase) validateLockHolds(ctx context.Context, slotIDs []int64, holder string) error {
	locked, err := uc.locker.LockedSet(ctx, slotIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to read slot locks: %v", err)
		return fmt.Errorf("%w: read locks: %v", ErrInternal, err)
	}

	for id, lockHolder := range locked {
		if lockHolder != holder {
			uc.logger.Warn("CreateBooking: slot %d is locked by another client", id)
			return fmt.Errorf("%w: slot %d", ErrSlotLocked, id)
		}
	}
	return nil
}

// releaseLocks снимает блокировки держателя после коммита, best-effort
func (uc *UseCase) releaseLocks(ctx context.Context, slotIDs []int64, holder string) {
	if holder == "" {
		return
	}
	for _, id := range slotIDs {
		if err := uc.locker.Release(ctx, id, holder); err != nil {
			uc.logger.Warn("CreateBooking: failed to release lock on slot %d: %v", id, err)
		}
	}
}

// slotDuration вычисляет длительность слота в минутах
func slotDuration(slot *domain.Slot) int {
	start, err := slot.StartTime.Minutes()
	if err != nil {
		return 0
	}
	end, err := slot.EndTime.Minutes()
	if err != nil {
		return 0
	}
	return end - start
}

// isBusinessError отличает бизнес-отказ от инфраструктурного сбоя
func isBusinessError(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidInput,
		ErrInvalidDate,
		ErrDateTooFarInFuture,
		ErrTooLateToBook,
		ErrSlotNotAvailable,
		ErrSlotLocked,
		ErrInsufficientSlots,
		ErrEntitlementExhausted,
		ErrEntitlementNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
