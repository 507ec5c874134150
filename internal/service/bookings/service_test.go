package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking

	cancelledID     int64
	cancelledStatus domain.BookingStatus
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByGroupID(_ context.Context, groupID string) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.GroupID != nil && *b.GroupID == groupID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) GetByUserID(_ context.Context, userID int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) GetByTenantWithFilter(_ context.Context, filter domain.TenantBookingsFilter) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.TenantID == filter.TenantID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, status domain.BookingStatus, _ string) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	// UPDATE проходит только из отменяемых статусов
	if !b.CanBeCancelled() {
		return bookingRepo.ErrCannotCancel
	}
	f.cancelledID = id
	f.cancelledStatus = status
	b.Status = status
	return nil
}

// staleReadBookingRepo отдает снимок брони, сделанный до первой отмены:
// так бронь видят конкурентные запросы, прочитавшие её до входа в транзакцию
type staleReadBookingRepo struct {
	*fakeBookingRepo
	snapshot *domain.Booking
}

func (f *staleReadBookingRepo) GetByID(_ context.Context, _ int64) (*domain.Booking, error) {
	return f.snapshot, nil
}

type fakeSlotRepo struct {
	incremented []int64
	full        bool
}

func (f *fakeSlotRepo) IncrementCapacity(_ context.Context, id int64) error {
	if f.full {
		return slotRepo.ErrCapacityFull
	}
	f.incremented = append(f.incremented, id)
	return nil
}

type fakeEntitlementRepo struct {
	refunds []int64
}

func (f *fakeEntitlementRepo) Refund(_ context.Context, subscriptionID, _ int64) error {
	f.refunds = append(f.refunds, subscriptionID)
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	cancelled []events.BookingCancelledEvent
}

func (f *fakePublisher) PublishBookingCancelled(_ context.Context, event events.BookingCancelledEvent) {
	f.cancelled = append(f.cancelled, event)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBooking(id int64) *domain.Booking {
	start, _ := types.NewTimeStringFromString("10:00")
	return &domain.Booking{
		ID:              id,
		TenantID:        1,
		UserID:          100,
		ServiceID:       5,
		SlotID:          50,
		BookingDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		DurationMinutes: 60,
		Status:          domain.StatusConfirmed,
	}
}

func newTestService(repo BookingRepository, slots *fakeSlotRepo, ents *fakeEntitlementRepo, pub *fakePublisher) *Service {
	return NewService(repo, slots, ents, fakeTxManager{}, pub, nopLogger{})
}

func TestService_Cancel_RestoresCapacity(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{1: testBooking(1)}}
	slots := &fakeSlotRepo{}
	ents := &fakeEntitlementRepo{}
	pub := &fakePublisher{}
	svc := newTestService(repo, slots, ents, pub)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelledByUser, repo.cancelledStatus)
	assert.Equal(t, []int64{50}, slots.incremented)
	assert.Empty(t, ents.refunds, "no subscription - nothing to refund")
	require.Len(t, pub.cancelled, 1)
	assert.Equal(t, int64(1), pub.cancelled[0].BookingID)
}

func TestService_Cancel_RefundsEntitlement(t *testing.T) {
	b := testBooking(2)
	b.SubscriptionID = ptr.Ptr(int64(77))
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{2: b}}
	slots := &fakeSlotRepo{}
	ents := &fakeEntitlementRepo{}
	svc := newTestService(repo, slots, ents, &fakePublisher{})

	err := svc.Cancel(context.Background(), 2, &models.CancelBookingRequest{UserID: 100})
	require.NoError(t, err)

	assert.Equal(t, []int64{77}, ents.refunds)
}

func TestService_Cancel_TenantActor(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{3: testBooking(3)}}
	svc := newTestService(repo, &fakeSlotRepo{}, &fakeEntitlementRepo{}, &fakePublisher{})

	err := svc.Cancel(context.Background(), 3, &models.CancelBookingRequest{UserID: 999, TenantActor: true})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelledByTenant, repo.cancelledStatus)
}

func TestService_Cancel_AccessDenied(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{4: testBooking(4)}}
	slots := &fakeSlotRepo{}
	pub := &fakePublisher{}
	svc := newTestService(repo, slots, &fakeEntitlementRepo{}, pub)

	err := svc.Cancel(context.Background(), 4, &models.CancelBookingRequest{UserID: 999})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, slots.incremented)
	assert.Empty(t, pub.cancelled)
}

func TestService_Cancel_AlreadyCancelled(t *testing.T) {
	b := testBooking(5)
	b.Status = domain.StatusCancelledByUser
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{5: b}}
	svc := newTestService(repo, &fakeSlotRepo{}, &fakeEntitlementRepo{}, &fakePublisher{})

	err := svc.Cancel(context.Background(), 5, &models.CancelBookingRequest{UserID: 100})
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestService_Cancel_ConcurrentDoubleCancel(t *testing.T) {
	b := testBooking(10)
	b.SubscriptionID = ptr.Ptr(int64(88))
	snapshot := *b
	repo := &staleReadBookingRepo{
		fakeBookingRepo: &fakeBookingRepo{bookings: map[int64]*domain.Booking{10: b}},
		snapshot:        &snapshot,
	}
	slots := &fakeSlotRepo{}
	ents := &fakeEntitlementRepo{}
	pub := &fakePublisher{}
	svc := newTestService(repo, slots, ents, pub)

	err := svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 100})
	require.NoError(t, err)

	// Второй запрос прочитал бронь до коммита первого и прошел проверку
	// статуса на устаревшем снимке - его останавливает предикат в UPDATE
	err = svc.Cancel(context.Background(), 10, &models.CancelBookingRequest{UserID: 100})
	assert.ErrorIs(t, err, ErrCannotCancel)

	assert.Equal(t, []int64{50}, slots.incremented, "seat must be restored exactly once")
	assert.Equal(t, []int64{88}, ents.refunds, "entitlement must be refunded exactly once")
	assert.Len(t, pub.cancelled, 1)
}

func TestService_Cancel_SlotFullStillRefunds(t *testing.T) {
	b := testBooking(11)
	b.SubscriptionID = ptr.Ptr(int64(99))
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{11: b}}
	slots := &fakeSlotRepo{full: true}
	ents := &fakeEntitlementRepo{}
	svc := newTestService(repo, slots, ents, &fakePublisher{})

	err := svc.Cancel(context.Background(), 11, &models.CancelBookingRequest{UserID: 100})
	require.NoError(t, err)

	assert.Empty(t, slots.incremented)
	assert.Equal(t, []int64{99}, ents.refunds, "full slot must not skip the refund")
}

func TestService_GetByID_AccessControl(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{6: testBooking(6)}}
	svc := newTestService(repo, &fakeSlotRepo{}, &fakeEntitlementRepo{}, &fakePublisher{})

	resp, err := svc.GetByID(context.Background(), 6, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.ID)

	_, err = svc.GetByID(context.Background(), 6, 200)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), 404, 100)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetGroup(t *testing.T) {
	groupID := "3f1c9a2e-6d7b-4c55-9f0a-1d2e3f4a5b6c"
	b1 := testBooking(7)
	b1.GroupID = &groupID
	b2 := testBooking(8)
	b2.GroupID = &groupID
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{7: b1, 8: b2}}
	svc := newTestService(repo, &fakeSlotRepo{}, &fakeEntitlementRepo{}, &fakePublisher{})

	resp, err := svc.GetGroup(context.Background(), groupID, 100)
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	_, err = svc.GetGroup(context.Background(), groupID, 200)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetGroup(context.Background(), "missing-group", 100)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	repo := &fakeBookingRepo{bookings: map[int64]*domain.Booking{9: testBooking(9)}}
	svc := newTestService(repo, &fakeSlotRepo{}, &fakeEntitlementRepo{}, &fakePublisher{})

	err := svc.UpdateStatus(context.Background(), 9, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, repo.bookings[9].Status)

	err = svc.UpdateStatus(context.Background(), 9, "teleported")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateStatus(context.Background(), 404, "completed")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
