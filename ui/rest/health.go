package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/serenease/notify/domains/health"
	"github.com/serenease/notify/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}
	app.Get("/health", handler.CheckAll)
	return handler
}

func (h *Health) CheckAll(c *fiber.Ctx) error {
	records, err := h.Service.CheckAll(c.UserContext())
	utils.PanicIfNeeded(err)

	status := 200
	for _, rec := range records {
		if rec.Status == health.StatusError {
			status = 503
			break
		}
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}
