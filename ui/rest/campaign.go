package rest

import (
	"github.com/gofiber/fiber/v2"
	domainCampaign "github.com/serenease/notify/domains/campaign"
	"github.com/serenease/notify/pkg/utils"
)

type Campaign struct {
	Service domainCampaign.ICampaignUsecase
}

func InitRestCampaign(app fiber.Router, service domainCampaign.ICampaignUsecase) Campaign {
	rest := Campaign{Service: service}
	app.Post("/campaigns", rest.Create)
	app.Get("/campaigns", rest.List)
	app.Get("/campaigns/:id", rest.Get)
	app.Post("/campaigns/:id/plan", rest.Plan)
	app.Post("/campaigns/:id/cancel", rest.Cancel)
	app.Get("/campaigns/:id/history", rest.History)
	return rest
}

func (controller *Campaign) Create(c *fiber.Ctx) error {
	var request domainCampaign.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	campaign, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success create campaign",
		Results: campaign,
	})
}

func (controller *Campaign) Plan(c *fiber.Ctx) error {
	result, err := controller.Service.Plan(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success plan campaign",
		Results: result,
	})
}

func (controller *Campaign) Cancel(c *fiber.Ctx) error {
	err := controller.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel campaign",
	})
}

func (controller *Campaign) Get(c *fiber.Ctx) error {
	campaign, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch campaign",
		Results: campaign,
	})
}

func (controller *Campaign) List(c *fiber.Ctx) error {
	campaigns, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch campaigns",
		Results: campaigns,
	})
}

func (controller *Campaign) History(c *fiber.Ctx) error {
	history, err := controller.Service.History(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch campaign history",
		Results: history,
	})
}
