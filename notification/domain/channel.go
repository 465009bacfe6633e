package domain

import (
	"context"
	"errors"
)

// Channel identifies a delivery transport.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Valid reports whether the channel is one the engine knows how to dispatch.
func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// Outbound is a fully rendered message ready for a transport.
type Outbound struct {
	Contact string // email address or phone number
	Subject string // empty for SMS
	Body    string
}

// ChannelAdapter is the transport boundary. Implementations wrap errors with
// Transient or Permanent so the dispatcher can decide between retry and
// terminal failure; an unwrapped error is treated as transient.
type ChannelAdapter interface {
	Channel() Channel
	Send(ctx context.Context, msg Outbound) error
}

// TransientError marks a failure worth retrying (timeouts, rate limits,
// connection resets).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure that will not succeed on retry (invalid
// address, unsubscribed recipient, rejected content).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. Returns nil for nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err as non-retryable. Returns nil for nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in its chain.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
