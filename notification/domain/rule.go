package domain

import (
	"sort"
	"time"
)

// ReminderRule is one timing rule: send over Channel, Offset before the
// appointment start. Immutable configuration owned by NotificationPreferences.
type ReminderRule struct {
	Channel Channel       `json:"channel"`
	Offset  time.Duration `json:"offset"`
	Enabled bool          `json:"enabled"`
}

// PreferenceScopeGlobal is the scope value for practice-wide preferences.
// Any other scope value is a client ID overriding the global set.
const PreferenceScopeGlobal = "global"

// NotificationPreferences is the per-scope reminder configuration.
type NotificationPreferences struct {
	Scope        string         `json:"scope"` // "global" or a client ID
	Rules        []ReminderRule `json:"rules"`
	EmailEnabled bool           `json:"email_enabled"`
	SMSEnabled   bool           `json:"sms_enabled"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ChannelEnabled reports whether the given channel is opted in.
func (p NotificationPreferences) ChannelEnabled(c Channel) bool {
	switch c {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	}
	return false
}

// PlannedSend is one concrete send computed from a rule.
type PlannedSend struct {
	Channel Channel
	Offset  time.Duration
	SendAt  time.Time
}

// ComputeSendTimes turns an appointment start plus a rule set into absolute
// send instants. Disabled rules are skipped and sends already in the past
// (relative to now) are dropped; the engine never schedules backwards.
// Results are sorted by SendAt ascending. Pure, no I/O.
func ComputeSendTimes(appointmentStart time.Time, rules []ReminderRule, now time.Time) []PlannedSend {
	var planned []PlannedSend
	for _, rule := range rules {
		if !rule.Enabled || rule.Offset < 0 {
			continue
		}
		sendAt := appointmentStart.Add(-rule.Offset)
		if sendAt.Before(now) {
			continue
		}
		planned = append(planned, PlannedSend{
			Channel: rule.Channel,
			Offset:  rule.Offset,
			SendAt:  sendAt,
		})
	}

	sort.Slice(planned, func(i, j int) bool {
		return planned[i].SendAt.Before(planned[j].SendAt)
	})
	return planned
}
