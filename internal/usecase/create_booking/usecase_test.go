package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	entitlementRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/entitlement"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SchedulingService/internal/service/allocation"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

var testDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

// memStore хранилище в памяти, честно воспроизводящее транзакционную
// семантику: условные декременты и откат всех изменений при ошибке
type memStore struct {
	mu       sync.Mutex
	slots    map[int64]*domain.Slot
	ents     map[int64]*domain.Entitlement
	bookings []*domain.Booking
	nextID   int64
	cursor   map[int64]int64 // serviceID -> employeeID
}

func newMemStore() *memStore {
	return &memStore{
		slots:  make(map[int64]*domain.Slot),
		ents:   make(map[int64]*domain.Entitlement),
		cursor: make(map[int64]int64),
		nextID: 1,
	}
}

type storeSnapshot struct {
	remaining map[int64]int
	used      map[int64]int
	bookings  int
	cursor    map[int64]int64
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		remaining: make(map[int64]int),
		used:      make(map[int64]int),
		bookings:  len(s.bookings),
		cursor:    make(map[int64]int64),
	}
	for id, slot := range s.slots {
		snap.remaining[id] = slot.RemainingCapacity
	}
	for id, ent := range s.ents {
		snap.used[id] = ent.UsedQuantity
	}
	for k, v := range s.cursor {
		snap.cursor[k] = v
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	for id, remaining := range snap.remaining {
		s.slots[id].RemainingCapacity = remaining
	}
	for id, used := range snap.used {
		s.ents[id].UsedQuantity = used
	}
	s.bookings = s.bookings[:snap.bookings]
	s.cursor = snap.cursor
}

// memTxManager сериализует транзакции глобальным мьютексом и откатывает
// снимок хранилища при ошибке - как настоящая serializable транзакция
type memTxManager struct{ store *memStore }

func (m *memTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.DoSerializable(ctx, fn)
}

func (m *memTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// Репозитории поверх memStore. Вызываются только под мьютексом транзакции
// либо из однопоточной части теста

type memSlotRepo struct{ store *memStore }

func (r *memSlotRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Slot, error) {
	var result []*domain.Slot
	for _, id := range ids {
		if slot, ok := r.store.slots[id]; ok {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (r *memSlotRepo) ListForDate(_ context.Context, shiftIDs []int64, date time.Time, onlyAvailable, onlyWithCapacity bool) ([]*domain.Slot, error) {
	want := make(map[int64]bool, len(shiftIDs))
	for _, id := range shiftIDs {
		want[id] = true
	}
	var result []*domain.Slot
	for _, slot := range r.store.slots {
		if !want[slot.ShiftID] || !slot.SlotDate.Equal(date) {
			continue
		}
		if onlyAvailable && !slot.IsAvailable {
			continue
		}
		if onlyWithCapacity && slot.IsFull() {
			continue
		}
		result = append(result, slot)
	}
	return result, nil
}

func (r *memSlotRepo) DecrementCapacity(_ context.Context, id int64) error {
	slot, ok := r.store.slots[id]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if slot.RemainingCapacity <= 0 {
		return slotRepo.ErrNoCapacity
	}
	slot.RemainingCapacity--
	return nil
}

type memShiftRepo struct{ shifts []*domain.Shift }

func (r *memShiftRepo) ListActiveByService(_ context.Context, _, _ int64) ([]*domain.Shift, error) {
	return r.shifts, nil
}

func (r *memShiftRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.Shift, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var result []*domain.Shift
	for _, shift := range r.shifts {
		if want[shift.ID] {
			result = append(result, shift)
		}
	}
	return result, nil
}

type memBookingRepo struct{ store *memStore }

func (r *memBookingRepo) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	b := *booking
	b.ID = r.store.nextID
	r.store.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.store.bookings = append(r.store.bookings, &b)
	return &b, nil
}

type memEntitlementRepo struct{ store *memStore }

func (r *memEntitlementRepo) Consume(_ context.Context, subscriptionID, _ int64) error {
	ent, ok := r.store.ents[subscriptionID]
	if !ok {
		return entitlementRepo.ErrEntitlementNotFound
	}
	if ent.UsedQuantity >= ent.OriginalQuantity {
		return entitlementRepo.ErrExhausted
	}
	ent.UsedQuantity++
	return nil
}

type memRotation struct{ store *memStore }

func (r *memRotation) CommitAssignment(_ context.Context, _, serviceID, employeeID int64) error {
	r.store.cursor[serviceID] = employeeID
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   map[int64]string
	released []int64
}

func (f *fakeLocker) LockedSet(_ context.Context, slotIDs []int64) (map[int64]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[int64]string)
	for _, id := range slotIDs {
		if holder, ok := f.locked[id]; ok {
			result[id] = holder
		}
	}
	return result, nil
}

func (f *fakeLocker) Release(_ context.Context, slotID int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, slotID)
	delete(f.locked, slotID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.BookingCreatedEvent
}

func (f *fakePublisher) PublishBookingCreated(_ context.Context, event events.BookingCreatedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type fakeResourceClient struct{}

func (fakeResourceClient) MaterializeSlots(_ context.Context, _, _ int64, _ time.Time) ([]int64, error) {
	return nil, nil
}

type fakeConfigResolver struct{ config *domain.ScheduleConfig }

func (f *fakeConfigResolver) Resolve(_ context.Context, tenantID int64, _ *int64) (*domain.ScheduleConfig, error) {
	if f.config != nil {
		return f.config, nil
	}
	return &domain.ScheduleConfig{
		TenantID:       tenantID,
		SchedulingMode: domain.ModeTemplate,
		LockTTLSeconds: domain.DefaultLockTTLSeconds,
	}, nil
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

type fixture struct {
	store     *memStore
	locker    *fakeLocker
	publisher *fakePublisher
	rotation  *memRotation
	uc        *UseCase
}

func newFixture(t *testing.T, shifts []*domain.Shift, config *domain.ScheduleConfig) *fixture {
	store := newMemStore()
	locker := &fakeLocker{locked: make(map[int64]string)}
	publisher := &fakePublisher{}
	rotation := &memRotation{store: store}

	uc := NewUseCase(
		&memSlotRepo{store: store},
		&memShiftRepo{shifts: shifts},
		&memBookingRepo{store: store},
		&memEntitlementRepo{store: store},
		&fakeConfigResolver{config: config},
		allocation.NewService(),
		rotation,
		locker,
		publisher,
		fakeResourceClient{},
		&memTxManager{store: store},
		nopLogger{},
	)
	// За день до брони: проверка минимального зазора не мешает
	uc.timeProvider = fixedTime{t: testDate.AddDate(0, 0, -1).Add(12 * time.Hour)}

	return &fixture{store: store, locker: locker, publisher: publisher, rotation: rotation, uc: uc}
}

func (f *fixture) addSlot(t *testing.T, id, shiftID int64, start, end string, capacity int, employeeID *int64) {
	f.store.slots[id] = &domain.Slot{
		ID:                id,
		TenantID:          1,
		ServiceID:         5,
		ShiftID:           shiftID,
		SlotDate:          testDate,
		StartTime:         mustTime(t, start),
		EndTime:           mustTime(t, end),
		TotalCapacity:     capacity,
		RemainingCapacity: capacity,
		EmployeeID:        employeeID,
		IsAvailable:       true,
	}
}

func testShifts() []*domain.Shift {
	return []*domain.Shift{{
		ID: 10, TenantID: 1, ServiceID: 5,
		Weekdays: []int{int(testDate.Weekday())},
		IsActive: true,
	}}
}

func baseRequest() *Request {
	return &Request{UserID: 100, TenantID: 1, ServiceID: 5, Date: testDate}
}

func TestExecute_SingleSlot(t *testing.T) {
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 2, nil)

	req := baseRequest()
	req.SlotIDs = []int64{1}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Nil(t, resp.GroupID, "single booking gets no group id")
	assert.Equal(t, "10:00", resp.Bookings[0].StartTime)
	assert.Equal(t, 60, resp.Bookings[0].DurationMinutes)
	assert.Equal(t, 1, f.store.slots[1].RemainingCapacity)
	require.Len(t, f.publisher.events, 1)
}

func TestExecute_Oversell(t *testing.T) {
	// Два конкурентных запроса на последнее место: выигрывает ровно один
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := baseRequest()
			req.UserID = int64(100 + n)
			req.SlotIDs = []int64{1}
			_, results[n] = f.uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.store.slots[1].RemainingCapacity)
	assert.Len(t, f.store.bookings, 1)
}

func TestExecute_EntitlementExhaustionRejectsWholeGroup(t *testing.T) {
	// Квоты хватает на одну единицу, запрошены две: бронь отклоняется
	// целиком, места и квота возвращаются откатом
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, ptr.Ptr(int64(101)))
	f.addSlot(t, 2, 10, "10:00", "11:00", 1, ptr.Ptr(int64(102)))
	f.store.ents[77] = &domain.Entitlement{
		SubscriptionID:   77,
		ServiceID:        5,
		OriginalQuantity: 1,
		UsedQuantity:     0,
	}

	req := baseRequest()
	req.SlotIDs = []int64{1, 2}
	req.SubscriptionID = ptr.Ptr(int64(77))

	_, err := f.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrEntitlementExhausted)

	assert.Empty(t, f.store.bookings)
	assert.Equal(t, 1, f.store.slots[1].RemainingCapacity, "capacity rolled back")
	assert.Equal(t, 1, f.store.slots[2].RemainingCapacity, "capacity rolled back")

	ent := f.store.ents[77]
	assert.Equal(t, ent.OriginalQuantity, ent.UsedQuantity+ent.Remaining())
	assert.Equal(t, 0, ent.UsedQuantity, "quota rolled back")
	assert.Empty(t, f.publisher.events)
}

func TestExecute_GroupBookingSharesGroupID(t *testing.T) {
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, ptr.Ptr(int64(101)))
	f.addSlot(t, 2, 10, "10:00", "11:00", 1, ptr.Ptr(int64(102)))

	req := baseRequest()
	req.SlotIDs = []int64{1, 2}

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 2)
	require.NotNil(t, resp.GroupID)
	for _, b := range f.store.bookings {
		require.NotNil(t, b.GroupID)
		assert.Equal(t, *resp.GroupID, *b.GroupID)
	}
}

func TestExecute_QuantityConsecutive(t *testing.T) {
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "09:00", "10:00", 1, ptr.Ptr(int64(101)))
	f.addSlot(t, 2, 10, "10:00", "11:00", 1, ptr.Ptr(int64(101)))
	f.addSlot(t, 3, 10, "11:30", "12:30", 1, ptr.Ptr(int64(101)))

	req := baseRequest()
	req.Quantity = 2
	req.Policy = domain.PolicyConsecutive

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 2)
	assert.Equal(t, "09:00", resp.Bookings[0].StartTime)
	assert.Equal(t, "10:00", resp.Bookings[1].StartTime)

	// На три подряд цепочки нет - отказ целиком
	req = baseRequest()
	req.UserID = 200
	req.Quantity = 3
	req.Policy = domain.PolicyConsecutive
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInsufficientSlots)
}

func TestExecute_ForeignLockRejects(t *testing.T) {
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, nil)
	f.locker.locked[1] = "someone-else"

	req := baseRequest()
	req.SlotIDs = []int64{1}
	req.HolderToken = "me"

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotLocked)
	assert.Empty(t, f.store.bookings)
}

func TestExecute_OwnLockAcceptedAndReleased(t *testing.T) {
	f := newFixture(t, testShifts(), nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, nil)
	f.locker.locked[1] = "me"

	req := baseRequest()
	req.SlotIDs = []int64{1}
	req.HolderToken = "me"

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, f.locker.released)
}

func TestExecute_RotationCursorAdvancesOnCommit(t *testing.T) {
	config := &domain.ScheduleConfig{
		TenantID:            1,
		SchedulingMode:      domain.ModeTemplate,
		AutoAssignEmployees: true,
		LockTTLSeconds:      domain.DefaultLockTTLSeconds,
	}
	f := newFixture(t, testShifts(), config)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, ptr.Ptr(int64(102)))

	req := baseRequest()
	req.SlotIDs = []int64{1}

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(102), f.store.cursor[5])
}

func TestExecute_WeekdayMismatchRejects(t *testing.T) {
	// Шаблон перенастроили на другой день недели уже после генерации слота
	shifts := []*domain.Shift{{
		ID: 10, TenantID: 1, ServiceID: 5,
		Weekdays: []int{(int(testDate.Weekday()) + 1) % 7},
		IsActive: true,
	}}
	f := newFixture(t, shifts, nil)
	f.addSlot(t, 1, 10, "10:00", "11:00", 1, nil)

	req := baseRequest()
	req.SlotIDs = []int64{1}

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, f.store.slots[1].RemainingCapacity, "no partial mutation")
}
