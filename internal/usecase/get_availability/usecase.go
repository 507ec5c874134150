package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	resourceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/resourceservice"
	"github.com/m04kA/SMC-SchedulingService/internal/service/rotation"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// UseCase use case выдачи доступности услуги на дату
//
// Ошибки чтения (хранилище, Redis, внешний сервис расписаний) деградируют
// до пустой выдачи с записью в лог: пустой список честнее пятисотки,
// клиент просто не видит слотов
type UseCase struct {
	slotRepo       SlotRepository
	shiftRepo      ShiftRepository
	configResolver ConfigResolver
	locker         SlotLocker
	rotation       RotationAssigner
	resourceClient ResourceServiceClient
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	shiftRepo ShiftRepository,
	configResolver ConfigResolver,
	locker SlotLocker,
	rotationSvc RotationAssigner,
	resourceClient ResourceServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:       slotRepo,
		shiftRepo:      shiftRepo,
		configResolver: configResolver,
		locker:         locker,
		rotation:       rotationSvc,
		resourceClient: resourceClient,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case получения доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: user=%d, tenant=%d, service=%d, date=%s",
		req.UserID, req.TenantID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Эффективная конфигурация расписания (service-specific > tenant-wide > defaults)
	config, err := uc.configResolver.Resolve(ctx, req.TenantID, ptr.Ptr(req.ServiceID))
	if err != nil {
		uc.logger.Error("GetAvailability: failed to resolve config: %v", err)
		return uc.emptyResponse(req, nil), nil
	}

	// 3. Дата внутри окна бронирования
	if err := validateDate(req.Date, now, config.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailability: date validation failed: %v", err)
		return nil, err
	}

	// 4. Сырой список слотов: ресурсный режим и шаблонный режим взаимоисключающи
	// Опрошенные шаблоны попадают в ответ; в ресурсном режиме их нет
	var slots []*domain.Slot
	var shifts []*domain.Shift
	if config.IsResourceDriven() {
		slots, err = uc.resourceModeSlots(ctx, req)
	} else {
		slots, shifts, err = uc.templateModeSlots(ctx, req)
	}
	if err != nil {
		return uc.emptyResponse(req, nil), nil
	}

	if len(slots) == 0 {
		uc.logger.Info("GetAvailability: no slots for tenant=%d, service=%d, date=%s",
			req.TenantID, req.ServiceID, req.Date.Format(domain.DateFormat))
		resp := uc.emptyResponse(req, nil)
		resp.Shifts = toShiftViews(shifts)
		return resp, nil
	}

	// 5. Активные блокировки: исключаются из выдачи, но всегда раскрываются отдельно
	ids := make([]int64, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
	}
	locked, err := uc.locker.LockedSet(ctx, ids)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to read slot locks: %v", err)
		return uc.emptyResponse(req, nil), nil
	}
	if !req.IncludeLocked {
		slots = excludeLocked(slots, locked)
	}

	// 6. Прошедшие слоты: отбрасываются только для сегодняшней даты
	today := isSameDay(req.Date, now)
	if today && !req.IncludePast {
		slots = dropPast(slots, types.NewTimeString(now))
	}

	// 7. Ротация: одно время начала - один слот следующего по кругу сотрудника
	// Просмотр не двигает курсор: он двигается только при фиксации бронирования
	if config.AutoAssignEmployees {
		eligible := rotation.EligibleFromSlots(slots)
		if len(eligible) > 0 {
			assigned, err := uc.rotation.Assign(ctx, req.TenantID, req.ServiceID, eligible)
			if err != nil {
				uc.logger.Error("GetAvailability: rotation preview failed: %v", err)
				return uc.emptyResponse(req, nil), nil
			}
			slots = collapseByRotation(slots, assigned)
		}
	}

	// 8. Упорядоченная выдача
	sortByStart(slots)

	annotated := annotatePast(slots, types.NewTimeString(now), today)
	views := make([]Slot, len(annotated))
	for i, s := range annotated {
		views[i] = toSlotView(s.Slot, req.IncludePast && s.IsPast)
	}

	uc.logger.Info("GetAvailability: returning %d slots (%d locked) for tenant=%d, service=%d",
		len(views), len(locked), req.TenantID, req.ServiceID)

	return &Response{
		Date:          req.Date,
		TenantID:      req.TenantID,
		ServiceID:     req.ServiceID,
		Slots:         views,
		LockedSlotIDs: lockedIDs(locked),
		Shifts:        toShiftViews(shifts),
	}, nil
}

// resourceModeSlots материализует слоты из расписаний сотрудников
// Таймаут или ошибка внешнего сервиса деградируют до пустой выдачи -
// к шаблонам не откатываемся никогда, режимы взаимоисключающи
func (uc *UseCase) resourceModeSlots(ctx context.Context, req *Request) ([]*domain.Slot, error) {
	ids, err := uc.resourceClient.MaterializeSlots(ctx, req.TenantID, req.ServiceID, req.Date)
	if err != nil {
		if errors.Is(err, resourceClient.ErrTimeout) {
			uc.logger.Warn("GetAvailability: resource service timed out, returning empty")
			return []*domain.Slot{}, nil
		}
		uc.logger.Error("GetAvailability: resource service error: %v", err)
		return nil, fmt.Errorf("%w: materialize slots: %v", ErrInternal, err)
	}
	if len(ids) == 0 {
		return []*domain.Slot{}, nil
	}

	slots, err := uc.slotRepo.GetByIDs(ctx, ids)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to load materialized slots: %v", err)
		return nil, fmt.Errorf("%w: load slots: %v", ErrInternal, err)
	}

	// Материализация сама гарантирует соответствие дню недели -
	// сверка со сменой здесь не нужна
	result := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsAvailable {
			result = append(result, slot)
		}
	}
	if !req.IncludeFull {
		result = filterWithCapacity(result)
	}
	return result, nil
}

// templateModeSlots собирает слоты, порожденные активными шаблонами услуги
// Возвращает и сами опрошенные шаблоны: они входят в контракт выдачи
func (uc *UseCase) templateModeSlots(ctx context.Context, req *Request) ([]*domain.Slot, []*domain.Shift, error) {
	shifts, err := uc.shiftRepo.ListActiveByService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list shifts: %v", err)
		return nil, nil, fmt.Errorf("%w: list shifts: %v", ErrInternal, err)
	}
	if len(shifts) == 0 {
		return []*domain.Slot{}, shifts, nil
	}

	shiftIDs := make([]int64, len(shifts))
	for i, shift := range shifts {
		shiftIDs[i] = shift.ID
	}

	slots, err := uc.slotRepo.ListForDate(ctx, shiftIDs, req.Date, true, !req.IncludeFull)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list slots: %v", err)
		return nil, nil, fmt.Errorf("%w: list slots: %v", ErrInternal, err)
	}

	// Сверка дня недели слота с его шаблоном: шаблон могли перенастроить
	// уже после генерации слотов
	return filterByShiftWeekday(slots, shifts), shifts, nil
}

func (uc *UseCase) emptyResponse(req *Request, locked map[int64]string) *Response {
	return &Response{
		Date:          req.Date,
		TenantID:      req.TenantID,
		ServiceID:     req.ServiceID,
		Slots:         []Slot{},
		LockedSlotIDs: lockedIDs(locked),
		Shifts:        []Shift{},
	}
}
