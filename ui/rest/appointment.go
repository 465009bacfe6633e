package rest

import (
	"github.com/gofiber/fiber/v2"
	domainAppointment "github.com/serenease/notify/domains/appointment"
	"github.com/serenease/notify/pkg/utils"
)

type Appointment struct {
	Service domainAppointment.IAppointmentUsecase
}

func InitRestAppointment(app fiber.Router, service domainAppointment.IAppointmentUsecase) Appointment {
	rest := Appointment{Service: service}
	app.Post("/appointments", rest.Create)
	app.Get("/appointments", rest.ListUpcoming)
	app.Get("/appointments/:id", rest.Get)
	app.Put("/appointments/:id/reschedule", rest.Reschedule)
	app.Post("/appointments/:id/cancel", rest.Cancel)
	app.Post("/appointments/:id/complete", rest.Complete)
	return rest
}

func (controller *Appointment) Create(c *fiber.Ctx) error {
	var request domainAppointment.CreateRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	appt, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success create appointment",
		Results: appt,
	})
}

func (controller *Appointment) Reschedule(c *fiber.Ctx) error {
	var request domainAppointment.RescheduleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)
	request.ID = c.Params("id")

	appt, err := controller.Service.Reschedule(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success reschedule appointment",
		Results: appt,
	})
}

func (controller *Appointment) Cancel(c *fiber.Ctx) error {
	err := controller.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel appointment",
	})
}

func (controller *Appointment) Complete(c *fiber.Ctx) error {
	err := controller.Service.Complete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success complete appointment",
	})
}

func (controller *Appointment) Get(c *fiber.Ctx) error {
	appt, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch appointment",
		Results: appt,
	})
}

func (controller *Appointment) ListUpcoming(c *fiber.Ctx) error {
	appts, err := controller.Service.ListUpcoming(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch upcoming appointments",
		Results: appts,
	})
}
