package application

import (
	apptDomain "github.com/serenease/notify/appointments/domain"
	clientsDomain "github.com/serenease/notify/clients/domain"
)

// ReminderBindings builds the template variables for an appointment reminder.
// Called at dispatch time so a renamed client or amended appointment shows
// current data, not a snapshot taken when the reminder was scheduled.
func ReminderBindings(client *clientsDomain.Client, appt *apptDomain.Appointment) map[string]string {
	bindings := map[string]string{
		"clientName": client.DisplayName,
	}
	if appt != nil {
		bindings["appointmentDate"] = appt.StartAt.Format("Monday, January 2")
		bindings["appointmentTime"] = appt.StartAt.Format("3:04 PM")
		bindings["service"] = appt.Service
	}
	return bindings
}

// CampaignBindings builds the per-recipient variables for a campaign message.
func CampaignBindings(client *clientsDomain.Client) map[string]string {
	return map[string]string{
		"clientName": client.DisplayName,
	}
}
