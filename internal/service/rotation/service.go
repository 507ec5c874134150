package rotation

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Service круговое назначение сотрудников
// Курсор (последний назначенный сотрудник) хранится в БД и двигается
// только при фиксации бронирования. Assign и Next - чистый просмотр
type Service struct {
	cursorRepo CursorRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса ротации
func NewService(cursorRepo CursorRepository, logger Logger) *Service {
	return &Service{
		cursorRepo: cursorRepo,
		logger:     logger,
	}
}

// Next возвращает следующего сотрудника в циклическом порядке
// eligible сортируется и дедуплицируется; позиция курсора ищется в
// отсортированном списке
//
// Если курсор пуст или указывает на выбывшего сотрудника (деактивирован,
// уволен), ротация начинается с начала списка. Рестарт с нуля - осознанно
// сохраненное поведение, см. DESIGN.md
func Next(cursor *int64, eligible []int64) (int64, error) {
	ids := dedupeSorted(eligible)
	if len(ids) == 0 {
		return 0, ErrNoEligibleEmployees
	}

	if cursor == nil {
		return ids[0], nil
	}

	idx := indexOf(ids, *cursor)
	if idx == -1 {
		return ids[0], nil
	}

	return ids[(idx+1)%len(ids)], nil
}

// Assign возвращает следующего сотрудника для услуги, НЕ двигая курсор
// Курсор двигает только транзакция создания бронирования (CommitAssignment)
func (s *Service) Assign(ctx context.Context, tenantID, serviceID int64, eligible []int64) (int64, error) {
	cursor, err := s.cursorRepo.GetCursor(ctx, tenantID, serviceID)
	if err != nil {
		s.logger.Error("Assign: failed to get rotation cursor: tenant=%d, service=%d: %v", tenantID, serviceID, err)
		return 0, fmt.Errorf("%w: failed to get cursor: %v", ErrInternal, err)
	}

	next, err := Next(cursor, eligible)
	if err != nil {
		return 0, err
	}

	return next, nil
}

// CommitAssignment фиксирует назначение: двигает курсор на сотрудника
// Вызывается внутри транзакции создания бронирования
func (s *Service) CommitAssignment(ctx context.Context, tenantID, serviceID, employeeID int64) error {
	if err := s.cursorRepo.Advance(ctx, tenantID, serviceID, employeeID); err != nil {
		return fmt.Errorf("%w: failed to advance cursor: %v", ErrInternal, err)
	}
	return nil
}

// EligibleFromSlots извлекает отсортированный список сотрудников
// из слотов дня - кандидатов для ротации
func EligibleFromSlots(slots []*domain.Slot) []int64 {
	ids := make([]int64, 0, len(slots))
	for _, slot := range slots {
		if slot.EmployeeID != nil {
			ids = append(ids, *slot.EmployeeID)
		}
	}
	return dedupeSorted(ids)
}

func dedupeSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}

	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	result := sorted[:1]
	for _, id := range sorted[1:] {
		if id != result[len(result)-1] {
			result = append(result, id)
		}
	}
	return result
}

func indexOf(ids []int64, target int64) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
