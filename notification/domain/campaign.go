package domain

import (
	"time"

	clientsDomain "github.com/serenease/notify/clients/domain"
)

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// Campaign is a one-shot marketing send to a resolved audience.
type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	TemplateID  string         `json:"template_id"`
	Audience    AudienceFilter `json:"audience"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"` // nil means send on the next tick
	Status      CampaignStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AudienceKind tags the audience filter variants.
type AudienceKind string

const (
	AudienceAll          AudienceKind = "all"
	AudienceLastVisit    AudienceKind = "last_visit"
	AudienceNeverVisited AudienceKind = "never_visited"
	AudienceBirthday     AudienceKind = "birthday"
	AudienceCustom       AudienceKind = "custom"
)

// AudienceFilter is a tagged variant selecting campaign recipients. All
// variants except Custom are serializable; Custom carries an in-process
// predicate and cannot be persisted.
type AudienceFilter struct {
	Kind      AudienceKind                       `json:"kind"`
	Days      int                                `json:"days,omitempty"`  // last_visit: window size in days
	Month     time.Month                         `json:"month,omitempty"` // birthday: 1-12
	Predicate func(c *clientsDomain.Client) bool `json:"-"`
}

// Matches evaluates the filter against one client as of the given instant.
func (f AudienceFilter) Matches(c *clientsDomain.Client, asOf time.Time) bool {
	switch f.Kind {
	case AudienceAll:
		return true
	case AudienceLastVisit:
		if c.LastVisit == nil {
			return false
		}
		cutoff := asOf.AddDate(0, 0, -f.Days)
		return !c.LastVisit.Before(cutoff) && !c.LastVisit.After(asOf)
	case AudienceNeverVisited:
		return c.LastVisit == nil
	case AudienceBirthday:
		return c.BirthMonth == int(f.Month)
	case AudienceCustom:
		return f.Predicate != nil && f.Predicate(c)
	}
	return false
}

// Persistable reports whether the filter survives a round trip through the
// campaign store.
func (f AudienceFilter) Persistable() bool {
	return f.Kind != AudienceCustom
}
