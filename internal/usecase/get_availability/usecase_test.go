package get_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	resourceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/resourceservice"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var testDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

type fakeSlotRepo struct {
	slots   []*domain.Slot
	listErr error
}

func (f *fakeSlotRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Slot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var result []*domain.Slot
	for _, s := range f.slots {
		if want[s.ID] {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeSlotRepo) ListForDate(_ context.Context, shiftIDs []int64, date time.Time, onlyAvailable, onlyWithCapacity bool) ([]*domain.Slot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	want := make(map[int64]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		want[id] = true
	}
	var result []*domain.Slot
	for _, s := range f.slots {
		if !want[s.ShiftID] || !s.SlotDate.Equal(date) {
			continue
		}
		if onlyAvailable && !s.IsAvailable {
			continue
		}
		if onlyWithCapacity && s.IsFull() {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

type fakeShiftRepo struct {
	shifts []*domain.Shift
	err    error
}

func (f *fakeShiftRepo) ListActiveByService(_ context.Context, tenantID, serviceID int64) ([]*domain.Shift, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.shifts, nil
}

type fakeConfigResolver struct {
	config *domain.ScheduleConfig
}

func (f *fakeConfigResolver) Resolve(_ context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error) {
	if f.config != nil {
		return f.config, nil
	}
	return &domain.ScheduleConfig{
		TenantID:       tenantID,
		SchedulingMode: domain.ModeTemplate,
		LockTTLSeconds: domain.DefaultLockTTLSeconds,
	}, nil
}

type fakeLocker struct {
	locked map[int64]string
	err    error
}

func (f *fakeLocker) LockedSet(_ context.Context, slotIDs []int64) (map[int64]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make(map[int64]string)
	for _, id := range slotIDs {
		if holder, ok := f.locked[id]; ok {
			result[id] = holder
		}
	}
	return result, nil
}

type fakeRotation struct {
	cursor *int64
}

func (f *fakeRotation) Assign(_ context.Context, _, _ int64, eligible []int64) (int64, error) {
	if len(eligible) == 0 {
		return 0, errors.New("no eligible employees")
	}
	if f.cursor == nil {
		return eligible[0], nil
	}
	for i, id := range eligible {
		if id == *f.cursor {
			return eligible[(i+1)%len(eligible)], nil
		}
	}
	return eligible[0], nil
}

type fakeResourceClient struct {
	ids []int64
	err error
}

func (f *fakeResourceClient) MaterializeSlots(_ context.Context, _, _ int64, _ time.Time) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTime(t *testing.T, s string) types.TimeString {
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func testSlot(t *testing.T, id, shiftID int64, start, end string, remaining int, employeeID *int64) *domain.Slot {
	return &domain.Slot{
		ID:                id,
		TenantID:          1,
		ServiceID:         5,
		ShiftID:           shiftID,
		SlotDate:          testDate,
		StartTime:         mustTime(t, start),
		EndTime:           mustTime(t, end),
		TotalCapacity:     3,
		RemainingCapacity: remaining,
		EmployeeID:        employeeID,
		IsAvailable:       true,
	}
}

func testShift(id int64, weekdays ...int) *domain.Shift {
	return &domain.Shift{ID: id, TenantID: 1, ServiceID: 5, Weekdays: weekdays, IsActive: true}
}

func newTestUseCase(slots *fakeSlotRepo, shifts *fakeShiftRepo, cfg *fakeConfigResolver, locker *fakeLocker, rot *fakeRotation, rc *fakeResourceClient, now time.Time) *UseCase {
	uc := NewUseCase(slots, shifts, cfg, locker, rot, rc, nopLogger{})
	uc.timeProvider = fixedTime{t: now}
	return uc
}

func baseRequest() *Request {
	return &Request{UserID: 100, TenantID: 1, ServiceID: 5, Date: testDate}
}

// Запрос на завтра: прошедших слотов нет по определению
var dayBefore = testDate.AddDate(0, 0, -1).Add(12 * time.Hour)

func TestExecute_LockExclusion(t *testing.T) {
	weekday := int(testDate.Weekday())
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 1, nil),
		testSlot(t, 2, 10, "10:00", "11:00", 1, nil),
	}}
	locker := &fakeLocker{locked: map[int64]string{2: "holder-a"}}
	uc := newTestUseCase(slots, &fakeShiftRepo{shifts: []*domain.Shift{testShift(10, weekday)}},
		&fakeConfigResolver{}, locker, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(1), resp.Slots[0].ID)
	assert.Equal(t, []int64{2}, resp.LockedSlotIDs)

	// IncludeLocked возвращает заблокированный слот в основную выдачу
	req := baseRequest()
	req.IncludeLocked = true
	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 2)
	assert.Equal(t, []int64{2}, resp.LockedSlotIDs)
}

func TestExecute_CapacityFilter(t *testing.T) {
	weekday := int(testDate.Weekday())
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 0, nil),
		testSlot(t, 2, 10, "10:00", "11:00", 2, nil),
	}}
	uc := newTestUseCase(slots, &fakeShiftRepo{shifts: []*domain.Shift{testShift(10, weekday)}},
		&fakeConfigResolver{}, &fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(2), resp.Slots[0].ID)

	req := baseRequest()
	req.IncludeFull = true
	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 2)
}

func TestExecute_WeekdayRevalidation(t *testing.T) {
	weekday := int(testDate.Weekday())
	otherDay := (weekday + 1) % 7
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 1, nil),
		testSlot(t, 2, 11, "10:00", "11:00", 1, nil), // шаблон больше не покрывает этот день
	}}
	shifts := &fakeShiftRepo{shifts: []*domain.Shift{testShift(10, weekday), testShift(11, otherDay)}}
	uc := newTestUseCase(slots, shifts, &fakeConfigResolver{}, &fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(1), resp.Slots[0].ID)
}

func TestExecute_ShiftsInResponse(t *testing.T) {
	weekday := int(testDate.Weekday())
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 1, ptr.Ptr(int64(101))),
	}}
	shift := testShift(10, weekday)
	shift.EmployeeID = ptr.Ptr(int64(101))
	uc := newTestUseCase(slots, &fakeShiftRepo{shifts: []*domain.Shift{shift}},
		&fakeConfigResolver{}, &fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)

	// Опрошенные шаблоны входят в выдачу вместе со слотами
	require.Len(t, resp.Shifts, 1)
	assert.Equal(t, int64(10), resp.Shifts[0].ID)
	assert.Equal(t, []int{weekday}, resp.Shifts[0].Weekdays)
	require.NotNil(t, resp.Shifts[0].EmployeeID)
	assert.Equal(t, int64(101), *resp.Shifts[0].EmployeeID)
}

func TestExecute_TodayPastFiltering(t *testing.T) {
	weekday := int(testDate.Weekday())
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 1, nil),
		testSlot(t, 2, 10, "14:00", "15:00", 1, nil),
	}}
	// Сейчас 12:00 запрошенного дня
	noon := testDate.Add(12 * time.Hour)
	uc := newTestUseCase(slots, &fakeShiftRepo{shifts: []*domain.Shift{testShift(10, weekday)}},
		&fakeConfigResolver{}, &fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, noon)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(2), resp.Slots[0].ID)

	// IncludePast возвращает прошедший слот с пометкой
	req := baseRequest()
	req.IncludePast = true
	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.True(t, resp.Slots[0].IsPast)
	assert.False(t, resp.Slots[1].IsPast)
}

func TestExecute_RotationCollapse(t *testing.T) {
	weekday := int(testDate.Weekday())
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 1, ptr.Ptr(int64(101))),
		testSlot(t, 2, 10, "09:00", "10:00", 1, ptr.Ptr(int64(102))),
		testSlot(t, 3, 10, "10:00", "11:00", 1, ptr.Ptr(int64(101))),
		testSlot(t, 4, 10, "10:00", "11:00", 1, ptr.Ptr(int64(102))),
	}}
	cfg := &fakeConfigResolver{config: &domain.ScheduleConfig{
		TenantID:            1,
		SchedulingMode:      domain.ModeTemplate,
		AutoAssignEmployees: true,
		LockTTLSeconds:      domain.DefaultLockTTLSeconds,
	}}
	// Курсор на 101 - следующим назначается 102
	rot := &fakeRotation{cursor: ptr.Ptr(int64(101))}
	uc := newTestUseCase(slots, &fakeShiftRepo{shifts: []*domain.Shift{testShift(10, weekday)}},
		cfg, &fakeLocker{}, rot, &fakeResourceClient{}, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)

	// Одно время начала - один слот, и оба принадлежат сотруднику 102
	require.Len(t, resp.Slots, 2)
	for _, s := range resp.Slots {
		require.NotNil(t, s.EmployeeID)
		assert.Equal(t, int64(102), *s.EmployeeID)
	}

	// Повторный просмотр детерминирован: курсор не двигается
	again, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, resp.Slots, again.Slots)
}

func TestExecute_ResourceModeExclusivity(t *testing.T) {
	// В ресурсном режиме шаблоны не опрашиваются: слоты приходят
	// только из материализации
	slots := &fakeSlotRepo{slots: []*domain.Slot{
		testSlot(t, 1, 10, "09:00", "10:00", 1, ptr.Ptr(int64(101))),
		testSlot(t, 2, 10, "10:00", "11:00", 1, ptr.Ptr(int64(101))),
	}}
	cfg := &fakeConfigResolver{config: &domain.ScheduleConfig{
		TenantID:       1,
		SchedulingMode: domain.ModeResource,
		LockTTLSeconds: domain.DefaultLockTTLSeconds,
	}}
	rc := &fakeResourceClient{ids: []int64{1}}
	uc := newTestUseCase(slots, &fakeShiftRepo{err: errors.New("must not be called")},
		cfg, &fakeLocker{}, &fakeRotation{}, rc, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(1), resp.Slots[0].ID)
	assert.Empty(t, resp.Shifts)
}

func TestExecute_ResourceTimeoutDegradesToEmpty(t *testing.T) {
	cfg := &fakeConfigResolver{config: &domain.ScheduleConfig{
		TenantID:       1,
		SchedulingMode: domain.ModeResource,
		LockTTLSeconds: domain.DefaultLockTTLSeconds,
	}}
	rc := &fakeResourceClient{err: resourceClient.ErrTimeout}
	uc := newTestUseCase(&fakeSlotRepo{}, &fakeShiftRepo{}, cfg, &fakeLocker{}, &fakeRotation{}, rc, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_RepoErrorDegradesToEmpty(t *testing.T) {
	weekday := int(testDate.Weekday())
	slots := &fakeSlotRepo{listErr: errors.New("connection refused")}
	uc := newTestUseCase(slots, &fakeShiftRepo{shifts: []*domain.Shift{testShift(10, weekday)}},
		&fakeConfigResolver{}, &fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	resp, err := uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_DateValidation(t *testing.T) {
	uc := newTestUseCase(&fakeSlotRepo{}, &fakeShiftRepo{}, &fakeConfigResolver{},
		&fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	req := baseRequest()
	req.Date = testDate.AddDate(0, 0, -10)
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)

	cfg := &fakeConfigResolver{config: &domain.ScheduleConfig{
		TenantID:           1,
		SchedulingMode:     domain.ModeTemplate,
		AdvanceBookingDays: 7,
		LockTTLSeconds:     domain.DefaultLockTTLSeconds,
	}}
	uc = newTestUseCase(&fakeSlotRepo{}, &fakeShiftRepo{}, cfg,
		&fakeLocker{}, &fakeRotation{}, &fakeResourceClient{}, dayBefore)

	req = baseRequest()
	req.Date = testDate.AddDate(0, 0, 30)
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}
