package rotation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

func TestNext(t *testing.T) {
	// A=1, B=2, C=3
	eligible := []int64{1, 2, 3}

	tests := []struct {
		name   string
		cursor *int64
		want   int64
	}{
		{name: "nil cursor starts at first", cursor: nil, want: 1},
		{name: "after A comes B", cursor: ptr.Ptr(int64(1)), want: 2},
		{name: "after B comes C", cursor: ptr.Ptr(int64(2)), want: 3},
		{name: "after last wraps to first", cursor: ptr.Ptr(int64(3)), want: 1},
		{name: "stale cursor restarts at first", cursor: ptr.Ptr(int64(99)), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.cursor, eligible)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_UnsortedAndDuplicated(t *testing.T) {
	// Порядок и дубликаты на входе не влияют на детерминизм
	got, err := Next(ptr.Ptr(int64(2)), []int64{3, 1, 2, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestNext_Empty(t *testing.T) {
	_, err := Next(nil, nil)
	assert.ErrorIs(t, err, ErrNoEligibleEmployees)
}

type fakeCursorRepo struct {
	cursor   *int64
	advanced []int64
}

func (f *fakeCursorRepo) GetCursor(_ context.Context, _, _ int64) (*int64, error) {
	return f.cursor, nil
}

func (f *fakeCursorRepo) Advance(_ context.Context, _, _, employeeID int64) error {
	f.cursor = &employeeID
	f.advanced = append(f.advanced, employeeID)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestService_AssignDoesNotAdvanceCursor(t *testing.T) {
	repo := &fakeCursorRepo{cursor: ptr.Ptr(int64(2))}
	svc := NewService(repo, nopLogger{})

	// Несколько превью подряд дают один и тот же ответ
	for i := 0; i < 3; i++ {
		got, err := svc.Assign(context.Background(), 1, 5, []int64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, int64(3), got)
	}
	assert.Empty(t, repo.advanced)

	// Курсор двигается только фиксацией
	require.NoError(t, svc.CommitAssignment(context.Background(), 1, 5, 3))
	got, err := svc.Assign(context.Background(), 1, 5, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestEligibleFromSlots(t *testing.T) {
	slots := []*domain.Slot{
		{EmployeeID: ptr.Ptr(int64(3))},
		{EmployeeID: ptr.Ptr(int64(1))},
		{EmployeeID: nil},
		{EmployeeID: ptr.Ptr(int64(3))},
	}

	assert.Equal(t, []int64{1, 3}, EligibleFromSlots(slots))
}
