package channel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/serenease/notify/core/config"
	"github.com/serenease/notify/notification/domain"
	"github.com/sirupsen/logrus"
)

// SMSAdapter posts SMS deliveries to an HTTP gateway (Twilio-style form
// endpoint: To/From/Body fields, API key over basic auth).
type SMSAdapter struct {
	cfg        config.SMSConfig
	httpClient *http.Client
}

func NewSMSAdapter(cfg config.SMSConfig) (*SMSAdapter, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("sms gateway url not configured")
	}
	if cfg.Sender == "" {
		return nil, fmt.Errorf("sms sender number not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMSAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (a *SMSAdapter) Channel() domain.Channel { return domain.ChannelSMS }

func (a *SMSAdapter) Send(ctx context.Context, msg domain.Outbound) error {
	form := url.Values{}
	form.Set("To", msg.Contact)
	form.Set("From", a.cfg.Sender)
	form.Set("Body", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.GatewayURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Permanent(fmt.Errorf("build sms request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return domain.Transient(fmt.Errorf("sms gateway request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		gatewayErr := fmt.Errorf("sms gateway %s: %s", resp.Status, strings.TrimSpace(string(body)))
		return classifyGateway(resp.StatusCode, gatewayErr)
	}

	logrus.Debugf("[CHANNEL] SMS accepted by gateway for %s", msg.Contact)
	return nil
}

// classifyGateway: 4xx means the request itself is bad (invalid number,
// rejected content) and will stay bad; 5xx and 429 are the gateway's
// problem and worth retrying.
func classifyGateway(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return domain.Transient(err)
	}
	if status >= 400 && status < 500 {
		return domain.Permanent(err)
	}
	return domain.Transient(err)
}
