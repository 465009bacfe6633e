package rest

import (
	"github.com/gofiber/fiber/v2"
	domainClient "github.com/serenease/notify/domains/client"
	"github.com/serenease/notify/pkg/utils"
)

type Client struct {
	Service domainClient.IClientUsecase
}

func InitRestClient(app fiber.Router, service domainClient.IClientUsecase) Client {
	rest := Client{Service: service}
	app.Post("/clients", rest.Create)
	app.Get("/clients", rest.List)
	app.Get("/clients/:id", rest.Get)
	app.Put("/clients/:id", rest.Update)
	app.Delete("/clients/:id", rest.Delete)
	return rest
}

func (controller *Client) Create(c *fiber.Ctx) error {
	var request domainClient.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	client, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success create client",
		Results: client,
	})
}

func (controller *Client) Update(c *fiber.Ctx) error {
	var request domainClient.UpdateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.ID = c.Params("id")

	client, err := controller.Service.Update(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update client",
		Results: client,
	})
}

func (controller *Client) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete client",
	})
}

func (controller *Client) Get(c *fiber.Ctx) error {
	client, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch client",
		Results: client,
	})
}

func (controller *Client) List(c *fiber.Ctx) error {
	clients, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch clients",
		Results: clients,
	})
}
