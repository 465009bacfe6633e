package rest

import (
	"github.com/gofiber/fiber/v2"
	domainTemplate "github.com/serenease/notify/domains/template"
	"github.com/serenease/notify/pkg/utils"
)

type Template struct {
	Service domainTemplate.ITemplateUsecase
}

func InitRestTemplate(app fiber.Router, service domainTemplate.ITemplateUsecase) Template {
	rest := Template{Service: service}
	app.Post("/templates", rest.Create)
	app.Get("/templates", rest.List)
	app.Get("/templates/:id", rest.Get)
	app.Put("/templates/:id", rest.Update)
	app.Delete("/templates/:id", rest.Delete)
	app.Post("/templates/:id/preview", rest.Preview)
	return rest
}

func (controller *Template) Create(c *fiber.Ctx) error {
	var request domainTemplate.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	tpl, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success create template",
		Results: tpl,
	})
}

func (controller *Template) Update(c *fiber.Ctx) error {
	var request domainTemplate.UpdateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.ID = c.Params("id")

	tpl, err := controller.Service.Update(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update template",
		Results: tpl,
	})
}

func (controller *Template) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete template",
	})
}

func (controller *Template) Get(c *fiber.Ctx) error {
	tpl, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch template",
		Results: tpl,
	})
}

func (controller *Template) List(c *fiber.Ctx) error {
	templates, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch templates",
		Results: templates,
	})
}

func (controller *Template) Preview(c *fiber.Ctx) error {
	var request domainTemplate.PreviewRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.TemplateID = c.Params("id")

	result, err := controller.Service.Preview(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success preview template",
		Results: result,
	})
}
