package usecase

import (
	"context"
	"time"

	"github.com/serenease/notify/core/database"
	"github.com/serenease/notify/domains/health"
	"github.com/serenease/notify/infrastructure/valkey"
	"github.com/serenease/notify/notification/application"
)

type healthService struct {
	vk     *valkey.Client
	engine *application.Engine
}

func NewHealthService(vk *valkey.Client, engine *application.Engine) health.IHealthUsecase {
	return &healthService{vk: vk, engine: engine}
}

func record(entity health.EntityType, err error) health.HealthRecord {
	rec := health.HealthRecord{
		Entity:    entity,
		Status:    health.StatusOk,
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		rec.Status = health.StatusError
		rec.LastMessage = err.Error()
	}
	return rec
}

func (s *healthService) CheckDatabase(ctx context.Context) health.HealthRecord {
	db, err := database.GetSQLDB()
	if err != nil {
		return record(health.EntityDatabase, err)
	}
	return record(health.EntityDatabase, db.PingContext(ctx))
}

func (s *healthService) CheckValkey(ctx context.Context) health.HealthRecord {
	if s.vk == nil {
		rec := record(health.EntityValkey, nil)
		rec.Status = health.StatusUnknown
		rec.LastMessage = "valkey disabled"
		return rec
	}
	return record(health.EntityValkey, s.vk.Ping(ctx))
}

func (s *healthService) CheckEngine(ctx context.Context) health.HealthRecord {
	rec := record(health.EntityEngine, nil)
	stats := s.engine.Stats()
	if !stats.Running {
		rec.Status = health.StatusError
		rec.LastMessage = "engine loop not running"
	}
	return rec
}

func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	return []health.HealthRecord{
		s.CheckDatabase(ctx),
		s.CheckValkey(ctx),
		s.CheckEngine(ctx),
	}, nil
}
