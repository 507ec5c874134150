package get_availability

import (
	"sort"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// filterWithCapacity отбрасывает слоты без свободных мест
func filterWithCapacity(slots []*domain.Slot) []*domain.Slot {
	result := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.HasCapacity() {
			result = append(result, slot)
		}
	}
	return result
}

// filterByShiftWeekday отбрасывает слоты, чья дата выпала из дней недели
// их шаблона. Защита от протухших слотов после смены расписания шаблона
func filterByShiftWeekday(slots []*domain.Slot, shifts []*domain.Shift) []*domain.Slot {
	byID := make(map[int64]*domain.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}

	result := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		shift, ok := byID[slot.ShiftID]
		if !ok {
			continue
		}
		if slot.MatchesWeekday(shift) {
			result = append(result, slot)
		}
	}
	return result
}

// excludeLocked убирает из выдачи слоты под активной блокировкой
func excludeLocked(slots []*domain.Slot, locked map[int64]string) []*domain.Slot {
	if len(locked) == 0 {
		return slots
	}

	result := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if _, ok := locked[slot.ID]; ok {
			continue
		}
		result = append(result, slot)
	}
	return result
}

// annotatePast размечает слоты относительно текущего времени
// Применяется только когда запрошенная дата - сегодня; для будущих дат
// все слоты считаются предстоящими
func annotatePast(slots []*domain.Slot, now types.TimeString, today bool) []domain.AnnotatedSlot {
	result := make([]domain.AnnotatedSlot, 0, len(slots))
	for _, slot := range slots {
		result = append(result, domain.AnnotatedSlot{
			Slot:   slot,
			IsPast: today && slot.StartsBefore(now),
		})
	}
	return result
}

// dropPast отбрасывает слоты, начавшиеся до указанного времени
func dropPast(slots []*domain.Slot, now types.TimeString) []*domain.Slot {
	result := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if !slot.StartsBefore(now) {
			result = append(result, slot)
		}
	}
	return result
}

// collapseByRotation сворачивает выдачу до одного слота на время начала
// Предпочитается слот назначенного ротацией сотрудника; если у него нет
// слота на это время, берется первый слот по возрастанию ID сотрудника
func collapseByRotation(slots []*domain.Slot, assigned int64) []*domain.Slot {
	byStart := make(map[types.TimeString][]*domain.Slot)
	order := make([]types.TimeString, 0)
	for _, slot := range slots {
		if _, ok := byStart[slot.StartTime]; !ok {
			order = append(order, slot.StartTime)
		}
		byStart[slot.StartTime] = append(byStart[slot.StartTime], slot)
	}

	result := make([]*domain.Slot, 0, len(order))
	for _, start := range order {
		group := byStart[start]
		chosen := group[0]
		for _, slot := range group {
			if slot.EmployeeID != nil && *slot.EmployeeID == assigned {
				chosen = slot
				break
			}
			if employeeOrder(slot) < employeeOrder(chosen) {
				chosen = slot
			}
		}
		result = append(result, chosen)
	}
	return result
}

// sortByStart упорядочивает слоты по времени начала, затем по ID
func sortByStart(slots []*domain.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime.IsBefore(slots[j].StartTime)
		}
		return slots[i].ID < slots[j].ID
	})
}

// lockedIDs возвращает отсортированный список заблокированных слотов
func lockedIDs(locked map[int64]string) []int64 {
	ids := make([]int64, 0, len(locked))
	for id := range locked {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func employeeOrder(s *domain.Slot) int64 {
	if s.EmployeeID == nil {
		return 0
	}
	return *s.EmployeeID
}
