package materialize

import (
	"context"
	"time"
)

// runTimeout предел на один прогон материализации
const runTimeout = 5 * time.Minute

// Job ежедневная материализация слотов для тенантов в resource-driven режиме
// Прогон best-effort: отказ одного тенанта не прерывает остальные,
// запрос доступности в любом случае дотянет недостающие слоты сам
type Job struct {
	configs ConfigLister
	client  ResourceServiceClient
	logger  Logger
}

func NewJob(configs ConfigLister, client ResourceServiceClient, logger Logger) *Job {
	return &Job{
		configs: configs,
		client:  client,
		logger:  logger,
	}
}

// Run материализует слоты на сегодняшнюю дату для всех resource-driven услуг
func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	today := time.Now()

	configs, err := j.configs.ListResourceMode(ctx)
	if err != nil {
		j.logger.Error("Materialize: failed to list resource-mode configs: %v", err)
		return
	}
	if len(configs) == 0 {
		j.logger.Info("Materialize: no resource-mode configs, nothing to do")
		return
	}

	var succeeded, failed int
	for _, cfg := range configs {
		// Tenant-wide запись без услуги материализовать нечем
		if cfg.ServiceID == nil {
			continue
		}

		slotIDs, err := j.client.MaterializeSlots(ctx, cfg.TenantID, *cfg.ServiceID, today)
		if err != nil {
			failed++
			j.logger.Warn("Materialize: tenant=%d service=%d failed: %v", cfg.TenantID, *cfg.ServiceID, err)
			continue
		}

		succeeded++
		j.logger.Info("Materialize: tenant=%d service=%d materialized %d slots",
			cfg.TenantID, *cfg.ServiceID, len(slotIDs))
	}

	j.logger.Info("Materialize: run finished, succeeded=%d, failed=%d", succeeded, failed)
}
