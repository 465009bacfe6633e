package health

import (
	"context"
	"time"
)

type EntityType string

const (
	EntityDatabase EntityType = "database"
	EntityValkey   EntityType = "valkey"
	EntityEngine   EntityType = "engine"
)

type Status string

const (
	StatusOk      Status = "OK"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

type HealthRecord struct {
	Entity      EntityType `json:"entity"`
	Status      Status     `json:"status"`
	LastMessage string     `json:"last_message,omitempty"`
	CheckedAt   time.Time  `json:"checked_at"`
}

type IHealthUsecase interface {
	CheckAll(ctx context.Context) ([]HealthRecord, error)
	CheckDatabase(ctx context.Context) HealthRecord
	CheckValkey(ctx context.Context) HealthRecord
	CheckEngine(ctx context.Context) HealthRecord
}
