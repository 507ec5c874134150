package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	admissionRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/admission"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    int64
		wantErr bool
	}{
		{name: "canonical form", code: "ADM-1234", want: 1234},
		{name: "compact form", code: "000000001234", want: 1234},
		{name: "canonical with spaces", code: "  ADM-42  ", want: 42},
		{name: "compact full width", code: "999999999999", want: 999999999999},
		{name: "wrong length compact", code: "1234", wantErr: true},
		{name: "zero id", code: "ADM-0", wantErr: true},
		{name: "negative id", code: "ADM--5", wantErr: true},
		{name: "garbage", code: "TICKET-99", wantErr: true},
		{name: "compact with letters", code: "0000000012ab", wantErr: true},
		{name: "empty", code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	// Оба печатных представления сводятся к одному ID
	const bookingID = int64(777)

	fromCanonical, err := Normalize(CanonicalCode(bookingID))
	require.NoError(t, err)

	fromCompact, err := Normalize(CompactCode(bookingID))
	require.NoError(t, err)

	assert.Equal(t, fromCanonical, fromCompact)
	assert.Equal(t, bookingID, fromCanonical)
}

// fakeAdmissionRepo имитирует атомарный условный UPDATE:
// первый Consume выигрывает, остальные получают состояние первого скана
type fakeAdmissionRepo struct {
	mu    sync.Mutex
	scans map[int64]*domain.AdmissionScan
	known map[int64]bool
}

func newFakeAdmissionRepo(bookingIDs ...int64) *fakeAdmissionRepo {
	known := make(map[int64]bool)
	for _, id := range bookingIDs {
		known[id] = true
	}
	return &fakeAdmissionRepo{
		scans: make(map[int64]*domain.AdmissionScan),
		known: known,
	}
}

func (f *fakeAdmissionRepo) Consume(_ context.Context, bookingID, actorID int64) (*domain.AdmissionScan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.known[bookingID] {
		return nil, admissionRepo.ErrBookingNotFound
	}
	if existing, ok := f.scans[bookingID]; ok {
		return existing, admissionRepo.ErrAlreadyConsumed
	}

	scan := &domain.AdmissionScan{
		BookingID: bookingID,
		ScannedAt: time.Now(),
		ScannedBy: actorID,
	}
	f.scans[bookingID] = scan
	return scan, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestService_Consume_ExactlyOnce(t *testing.T) {
	svc := NewService(newFakeAdmissionRepo(42), nopLogger{})
	ctx := context.Background()

	first, err := svc.Consume(ctx, "ADM-42", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.ScannedBy)

	// Повторное сканирование другим актором - отказ с деталями первого
	second, err := svc.Consume(ctx, "000000000042", 200)
	require.ErrorIs(t, err, ErrAlreadyConsumed)
	require.NotNil(t, second)
	assert.Equal(t, int64(100), second.ScannedBy)
	assert.Equal(t, first.ScannedAt, second.ScannedAt)
}

func TestService_Consume_ConcurrentScans(t *testing.T) {
	svc := NewService(newFakeAdmissionRepo(7), nopLogger{})
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, results[n] = svc.Consume(ctx, "ADM-7", int64(n+1))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyConsumed)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestService_Consume_UnknownBooking(t *testing.T) {
	svc := NewService(newFakeAdmissionRepo(), nopLogger{})

	_, err := svc.Consume(context.Background(), "ADM-1", 1)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
