package materialize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type fakeConfigLister struct {
	configs []*domain.ScheduleConfig
	err     error
}

func (f *fakeConfigLister) ListResourceMode(_ context.Context) ([]*domain.ScheduleConfig, error) {
	return f.configs, f.err
}

type fakeResourceClient struct {
	calls [][2]int64
	fail  map[int64]error
}

func (f *fakeResourceClient) MaterializeSlots(_ context.Context, tenantID, serviceID int64, _ time.Time) ([]int64, error) {
	f.calls = append(f.calls, [2]int64{tenantID, serviceID})
	if err, ok := f.fail[serviceID]; ok {
		return nil, err
	}
	return []int64{1, 2}, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func resourceConfig(tenantID int64, serviceID *int64) *domain.ScheduleConfig {
	return &domain.ScheduleConfig{
		TenantID:       tenantID,
		ServiceID:      serviceID,
		SchedulingMode: domain.ModeResource,
	}
}

func TestJob_Run_MaterializesAllServices(t *testing.T) {
	lister := &fakeConfigLister{configs: []*domain.ScheduleConfig{
		resourceConfig(1, ptr.Ptr(int64(10))),
		resourceConfig(2, ptr.Ptr(int64(20))),
	}}
	client := &fakeResourceClient{}

	NewJob(lister, client, nopLogger{}).Run()

	assert.Equal(t, [][2]int64{{1, 10}, {2, 20}}, client.calls)
}

func TestJob_Run_SkipsTenantWideConfigs(t *testing.T) {
	lister := &fakeConfigLister{configs: []*domain.ScheduleConfig{
		resourceConfig(1, nil),
		resourceConfig(1, ptr.Ptr(int64(10))),
	}}
	client := &fakeResourceClient{}

	NewJob(lister, client, nopLogger{}).Run()

	assert.Equal(t, [][2]int64{{1, 10}}, client.calls)
}

func TestJob_Run_ContinuesPastFailures(t *testing.T) {
	lister := &fakeConfigLister{configs: []*domain.ScheduleConfig{
		resourceConfig(1, ptr.Ptr(int64(10))),
		resourceConfig(2, ptr.Ptr(int64(20))),
	}}
	client := &fakeResourceClient{fail: map[int64]error{10: errors.New("upstream down")}}

	NewJob(lister, client, nopLogger{}).Run()

	// Отказ первого тенанта не прерывает прогон
	assert.Equal(t, [][2]int64{{1, 10}, {2, 20}}, client.calls)
}
