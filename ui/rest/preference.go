package rest

import (
	"github.com/gofiber/fiber/v2"
	domainPreference "github.com/serenease/notify/domains/preference"
	"github.com/serenease/notify/notification/domain"
	"github.com/serenease/notify/pkg/utils"
)

type Preference struct {
	Service domainPreference.IPreferenceUsecase
}

func InitRestPreference(app fiber.Router, service domainPreference.IPreferenceUsecase) Preference {
	rest := Preference{Service: service}
	app.Get("/preferences", rest.GetGlobal)
	app.Get("/preferences/:scope", rest.Get)
	app.Put("/preferences/:scope", rest.Put)
	app.Delete("/preferences/:scope", rest.Delete)
	return rest
}

func (controller *Preference) GetGlobal(c *fiber.Ctx) error {
	prefs, err := controller.Service.Get(c.UserContext(), domain.PreferenceScopeGlobal)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch preferences",
		Results: prefs,
	})
}

func (controller *Preference) Get(c *fiber.Ctx) error {
	prefs, err := controller.Service.Get(c.UserContext(), c.Params("scope"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch preferences",
		Results: prefs,
	})
}

func (controller *Preference) Put(c *fiber.Ctx) error {
	var request domainPreference.UpsertRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.Scope = c.Params("scope")

	prefs, err := controller.Service.Put(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success save preferences",
		Results: prefs,
	})
}

func (controller *Preference) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("scope"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete preferences",
	})
}
