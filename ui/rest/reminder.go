package rest

import (
	"github.com/gofiber/fiber/v2"
	domainReminder "github.com/serenease/notify/domains/reminder"
	"github.com/serenease/notify/pkg/utils"
)

type Reminder struct {
	Service domainReminder.IReminderUsecase
}

func InitRestReminder(app fiber.Router, service domainReminder.IReminderUsecase) Reminder {
	rest := Reminder{Service: service}
	app.Get("/appointments/:id/reminders", rest.History)
	app.Post("/appointments/:id/reminders/reconcile", rest.Reconcile)
	app.Post("/deliveries/:id/delivered", rest.MarkDelivered)
	app.Post("/deliveries/:id/opened", rest.MarkOpened)
	return rest
}

func (controller *Reminder) History(c *fiber.Ctx) error {
	history, err := controller.Service.DeliveryHistory(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch reminder history",
		Results: history,
	})
}

// Reconcile forces a re-plan for one appointment, useful after manual data
// fixes.
func (controller *Reminder) Reconcile(c *fiber.Ctx) error {
	err := controller.Service.AppointmentRescheduled(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success reconcile reminders",
	})
}

func (controller *Reminder) MarkDelivered(c *fiber.Ctx) error {
	request := domainReminder.ReceiptRequest{DeliveryID: c.Params("id")}
	err := controller.Service.MarkDelivered(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success record delivery receipt",
	})
}

func (controller *Reminder) MarkOpened(c *fiber.Ctx) error {
	request := domainReminder.ReceiptRequest{DeliveryID: c.Params("id")}
	err := controller.Service.MarkOpened(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success record open receipt",
	})
}
