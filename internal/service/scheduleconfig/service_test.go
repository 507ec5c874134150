package scheduleconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	configRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/scheduleconfig"
	"github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type fakeConfigRepo struct {
	configs  []*domain.ScheduleConfig
	upserted *domain.ScheduleConfig
}

// GetWithHierarchy повторяет семантику SQL: service-specific запись побеждает tenant-wide
func (f *fakeConfigRepo) GetWithHierarchy(_ context.Context, tenantID int64, serviceID *int64) (*domain.ScheduleConfig, error) {
	var tenantWide *domain.ScheduleConfig
	for _, c := range f.configs {
		if c.TenantID != tenantID {
			continue
		}
		if serviceID != nil && c.ServiceID != nil && *c.ServiceID == *serviceID {
			return c, nil
		}
		if c.ServiceID == nil {
			tenantWide = c
		}
	}
	if tenantWide != nil {
		return tenantWide, nil
	}
	return nil, configRepo.ErrConfigNotFound
}

func (f *fakeConfigRepo) Upsert(_ context.Context, config *domain.ScheduleConfig) (*domain.ScheduleConfig, error) {
	config.ID = 1
	f.upserted = config
	return config, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestService_Get_Defaults(t *testing.T) {
	svc := NewService(&fakeConfigRepo{}, nopLogger{})

	resp, err := svc.Get(context.Background(), &models.GetConfigRequest{TenantID: 1})
	require.NoError(t, err)

	assert.True(t, resp.IsDefault)
	assert.Equal(t, string(domain.ModeTemplate), resp.SchedulingMode)
	assert.Equal(t, domain.DefaultLockTTLSeconds, resp.LockTTLSeconds)
}

func TestService_Get_ServiceOverridesTenant(t *testing.T) {
	repo := &fakeConfigRepo{configs: []*domain.ScheduleConfig{
		{ID: 10, TenantID: 1, SchedulingMode: domain.ModeTemplate, LockTTLSeconds: 120},
		{ID: 11, TenantID: 1, ServiceID: ptr.Ptr(int64(5)), SchedulingMode: domain.ModeResource, LockTTLSeconds: 60},
	}}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.Get(context.Background(), &models.GetConfigRequest{TenantID: 1, ServiceID: ptr.Ptr(int64(5))})
	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, string(domain.ModeResource), resp.SchedulingMode)

	// Для другой услуги действует tenant-wide запись
	resp, err = svc.Get(context.Background(), &models.GetConfigRequest{TenantID: 1, ServiceID: ptr.Ptr(int64(99))})
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)
	assert.False(t, resp.IsDefault)
}

func TestService_Update_PartialOverDefaults(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.Update(context.Background(), &models.UpdateConfigRequest{
		TenantID:       1,
		ServiceID:      ptr.Ptr(int64(5)),
		LockTTLSeconds: ptr.Ptr(60),
	})
	require.NoError(t, err)

	assert.Equal(t, 60, resp.LockTTLSeconds)
	// Остальные поля взяты из значений по умолчанию
	assert.Equal(t, string(domain.ModeTemplate), resp.SchedulingMode)
	require.NotNil(t, repo.upserted.ServiceID)
	assert.Equal(t, int64(5), *repo.upserted.ServiceID)
}

func TestService_Update_Validation(t *testing.T) {
	svc := NewService(&fakeConfigRepo{}, nopLogger{})

	tests := []struct {
		name string
		req  *models.UpdateConfigRequest
	}{
		{
			name: "lock ttl below minimum",
			req:  &models.UpdateConfigRequest{TenantID: 1, LockTTLSeconds: ptr.Ptr(5)},
		},
		{
			name: "lock ttl above maximum",
			req:  &models.UpdateConfigRequest{TenantID: 1, LockTTLSeconds: ptr.Ptr(3600)},
		},
		{
			name: "unknown scheduling mode",
			req:  &models.UpdateConfigRequest{TenantID: 1, SchedulingMode: ptr.Ptr("adaptive")},
		},
		{
			name: "advance days above maximum",
			req:  &models.UpdateConfigRequest{TenantID: 1, AdvanceBookingDays: ptr.Ptr(1000)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
