package domain

import "time"

// MessageTemplate is an opaque text with {{placeholder}} tokens. Created and
// edited by template management; read-only to the engine.
type MessageTemplate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Channel      Channel   `json:"channel"`
	Subject      string    `json:"subject,omitempty"` // email only
	Body         string    `json:"body"`
	Placeholders []string  `json:"placeholders"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
