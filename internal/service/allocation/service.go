package allocation

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Service подбор набора слотов для группового бронирования
// Чистая логика над уже полученным списком доступных слотов:
// ни хранилища, ни блокировок здесь нет
type Service struct{}

// NewService создает новый экземпляр сервиса подбора слотов
func NewService() *Service {
	return &Service{}
}

// Allocate подбирает ровно quantity слотов по указанной политике
// anchor - опциональное время начала для parallel-политики
// Возвращает либо полный набор, либо ErrInsufficientSlots с деталями нехватки
func (s *Service) Allocate(
	slots []*domain.Slot,
	quantity int,
	policy string,
	anchor *types.TimeString,
) ([]*domain.Slot, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	available := withCapacity(slots)

	switch policy {
	case domain.PolicyParallel:
		return allocateParallel(available, quantity, anchor)
	case domain.PolicyConsecutive:
		return allocateConsecutive(available, quantity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

// allocateParallel подбирает quantity слотов в порядке (start, end, employee)
// независимо от сотрудника: группа занимает одновременную вместимость
// нескольких сотрудников
//
// Если anchor указан, подбор начинается с первого слота с этим временем начала.
// Ненайденный anchor молча откатывается к началу списка - унаследованное
// поведение, помечено как сомнительное в DESIGN.md
func allocateParallel(slots []*domain.Slot, quantity int, anchor *types.TimeString) ([]*domain.Slot, error) {
	ordered := make([]*domain.Slot, len(slots))
	copy(ordered, slots)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartTime != ordered[j].StartTime {
			return ordered[i].StartTime.IsBefore(ordered[j].StartTime)
		}
		if ordered[i].EndTime != ordered[j].EndTime {
			return ordered[i].EndTime.IsBefore(ordered[j].EndTime)
		}
		return employeeOrder(ordered[i]) < employeeOrder(ordered[j])
	})

	start := 0
	if anchor != nil {
		for i, slot := range ordered {
			if slot.StartTime == *anchor {
				start = i
				break
			}
		}
	}

	if len(ordered)-start < quantity {
		return nil, fmt.Errorf("%w: need %d, found %d", ErrInsufficientSlots, quantity, len(ordered)-start)
	}

	return ordered[start : start+quantity], nil
}

// allocateConsecutive ищет у одного сотрудника quantity подряд идущих слотов
// (конец каждого слота совпадает с началом следующего). Побеждает первый
// сотрудник в порядке возрастания ID, у которого такая цепочка есть
//
// Нужна, когда групповую заявку нельзя делить между сотрудниками
func allocateConsecutive(slots []*domain.Slot, quantity int) ([]*domain.Slot, error) {
	byEmployee := make(map[int64][]*domain.Slot)
	for _, slot := range slots {
		byEmployee[employeeOrder(slot)] = append(byEmployee[employeeOrder(slot)], slot)
	}

	employees := make([]int64, 0, len(byEmployee))
	for id := range byEmployee {
		employees = append(employees, id)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i] < employees[j] })

	best := 0
	for _, employeeID := range employees {
		own := byEmployee[employeeID]
		sort.SliceStable(own, func(i, j int) bool {
			return own[i].StartTime.IsBefore(own[j].StartTime)
		})

		if run := findRun(own, quantity); run != nil {
			return run, nil
		}
		if l := longestRun(own); l > best {
			best = l
		}
	}

	return nil, fmt.Errorf("%w: need %d consecutive, found at most %d", ErrInsufficientSlots, quantity, best)
}

// findRun ищет в отсортированном списке цепочку длины quantity,
// где EndTime[i] == StartTime[i+1]
func findRun(slots []*domain.Slot, quantity int) []*domain.Slot {
	if len(slots) < quantity {
		return nil
	}

	runStart := 0
	for i := 1; i <= len(slots); i++ {
		if i-runStart >= quantity {
			return slots[runStart : runStart+quantity]
		}
		if i == len(slots) {
			break
		}
		if slots[i-1].EndTime != slots[i].StartTime {
			runStart = i
		}
	}

	return nil
}

// longestRun возвращает длину самой длинной цепочки подряд идущих слотов
func longestRun(slots []*domain.Slot) int {
	if len(slots) == 0 {
		return 0
	}

	best, current := 1, 1
	for i := 1; i < len(slots); i++ {
		if slots[i-1].EndTime == slots[i].StartTime {
			current++
		} else {
			current = 1
		}
		if current > best {
			best = current
		}
	}

	return best
}

// withCapacity отбрасывает слоты без свободных мест
func withCapacity(slots []*domain.Slot) []*domain.Slot {
	result := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.HasCapacity() {
			result = append(result, slot)
		}
	}
	return result
}

// employeeOrder возвращает ID сотрудника для сортировки
// Слоты без сотрудника группируются под нулевым ключом
func employeeOrder(s *domain.Slot) int64 {
	if s.EmployeeID == nil {
		return 0
	}
	return *s.EmployeeID
}
