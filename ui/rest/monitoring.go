package rest

import (
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/serenease/notify/notification/application"
)

type MonitoringHandler struct {
	engine *application.Engine
}

func InitRestMonitoring(app fiber.Router, engine *application.Engine) {
	h := &MonitoringHandler{engine: engine}

	g := app.Group("/monitoring")
	g.Get("/engine", h.GetEngineStats)
	g.Get("/workers", h.GetWorkerStats)
}

func (h *MonitoringHandler) GetEngineStats(c *fiber.Ctx) error {
	stats := h.engine.Stats()

	lastTick := "never"
	if !stats.LastTickAt.IsZero() {
		lastTick = humanize.Time(stats.LastTickAt)
	}
	nextWake := "unscheduled"
	if !stats.NextWakeAt.IsZero() {
		nextWake = humanize.Time(stats.NextWakeAt)
	}

	return c.JSON(fiber.Map{
		"running":       stats.Running,
		"tick_interval": stats.TickInterval,
		"last_tick":     lastTick,
		"next_wake":     nextWake,
		"dispatched":    humanize.Comma(stats.Pool.TotalDispatched),
		"processed":     humanize.Comma(stats.Pool.TotalProcessed),
		"dropped":       humanize.Comma(stats.Pool.TotalDropped),
		"raw":           stats,
	})
}

func (h *MonitoringHandler) GetWorkerStats(c *fiber.Ctx) error {
	return c.JSON(h.engine.Stats().Pool)
}
