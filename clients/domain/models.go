package domain

import (
	"time"
)

// Client is a practice client record. The engine only reads this data: it is
// the source for reminder bindings and audience resolution.
type Client struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	BirthMonth  int        `json:"birth_month,omitempty"` // 1-12, 0 when unknown
	LastVisit   *time.Time `json:"last_visit,omitempty"`  // end of most recent completed appointment
	Active      bool       `json:"active"`
	Tags        []string   `json:"tags"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ContactFor returns the contact usable for the given channel kind
// ("email" or "sms"), or empty when the client has none.
func (c *Client) ContactFor(channel string) string {
	switch channel {
	case "email":
		return c.Email
	case "sms":
		return c.Phone
	}
	return ""
}

// HasTag reports whether the client carries a specific tag.
func (c *Client) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
