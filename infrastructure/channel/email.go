package channel

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/serenease/notify/core/config"
	"github.com/serenease/notify/notification/domain"
	"github.com/sirupsen/logrus"
)

// SMTPAdapter sends email deliveries through a plain SMTP relay.
type SMTPAdapter struct {
	cfg config.SMTPConfig
}

func NewSMTPAdapter(cfg config.SMTPConfig) (*SMTPAdapter, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host not configured")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address not configured")
	}
	return &SMTPAdapter{cfg: cfg}, nil
}

func (a *SMTPAdapter) Channel() domain.Channel { return domain.ChannelEmail }

// Send blocks until the relay accepts or rejects the message. smtp.SendMail
// has no context hook, so the send runs in a goroutine and the context only
// abandons the wait; the classification below decides whether the dispatcher
// retries.
func (a *SMTPAdapter) Send(ctx context.Context, msg domain.Outbound) error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Host, a.cfg.Port)

	var auth smtp.Auth
	if a.cfg.Username != "" {
		auth = smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.Host)
	}

	from := a.cfg.From
	if a.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", a.cfg.FromName, a.cfg.From)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.Contact + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, a.cfg.From, []string{msg.Contact}, []byte(b.String()))
	}()

	select {
	case <-ctx.Done():
		return domain.Transient(ctx.Err())
	case err := <-done:
		if err == nil {
			logrus.Debugf("[CHANNEL] Email accepted by %s for %s", addr, msg.Contact)
			return nil
		}
		return classifySMTP(err)
	}
}

// classifySMTP maps relay responses to the retry policy. 5xx replies mean
// the message itself is unacceptable (bad mailbox, policy rejection) and
// retrying the same bytes cannot help; everything else is a relay or
// network hiccup.
func classifySMTP(err error) error {
	text := err.Error()
	for _, code := range []string{"550", "551", "552", "553", "554"} {
		if strings.Contains(text, code) {
			return domain.Permanent(err)
		}
	}
	return domain.Transient(err)
}
