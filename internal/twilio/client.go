package twilio

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jwalitptl/carewatch-api/internal/model"
)

// ErrNotConfigured is returned when account credentials or the sending number are missing.
var ErrNotConfigured = stderrors.New("twilio service not configured")

const DefaultBaseURL = "https://api.twilio.com"

// APIError is a non-2xx answer from the Twilio API.
type APIError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Twilio %s error: %s", e.Channel, e.Body)
}

// Rejected reports whether Twilio refused this request only, such as an
// invalid To number. Auth failures and throttling are account-wide.
func (e *APIError) Rejected() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func apiError(channel string, resp *resty.Response) error {
	return &APIError{Channel: channel, StatusCode: resp.StatusCode(), Body: resp.String()}
}

type Config struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromNumber string
	Timeout    time.Duration
}

// Client talks to the Twilio REST API.
type Client struct {
	http       *resty.Client
	accountSID string
	from       string
	configured bool
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       httpClient,
		accountSID: cfg.AccountSID,
		from:       cfg.FromNumber,
		configured: cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.FromNumber != "",
	}
}

// SMS returns the sender for the sms channel.
func (c *Client) SMS() *SMSSender {
	return &SMSSender{client: c}
}

// Voice returns the sender for the voice_call channel.
func (c *Client) Voice() *VoiceSender {
	return &VoiceSender{client: c}
}

func (c *Client) post(ctx context.Context, resource string, form map[string]string) (*resty.Response, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}
	form["From"] = c.from
	return c.http.R().
		SetContext(ctx).
		SetPathParam("sid", c.accountSID).
		SetFormData(form).
		Post("/2010-04-01/Accounts/{sid}/" + resource)
}

type SMSSender struct {
	client *Client
}

func (s *SMSSender) Send(ctx context.Context, to string, msg model.RenderedAlert) error {
	resp, err := s.client.post(ctx, "Messages.json", map[string]string{
		"To":   to,
		"Body": msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	if resp.IsError() {
		return apiError("SMS", resp)
	}
	return nil
}

type VoiceSender struct {
	client *Client
}

func (s *VoiceSender) Send(ctx context.Context, to string, msg model.RenderedAlert) error {
	resp, err := s.client.post(ctx, "Calls.json", map[string]string{
		"To":    to,
		"Twiml": SayTwiml(msg.Text),
	})
	if err != nil {
		return fmt.Errorf("failed to place call: %w", err)
	}
	if resp.IsError() {
		return apiError("Voice", resp)
	}
	return nil
}

// SayTwiml wraps a script in a TwiML document that reads it aloud once.
func SayTwiml(script string) string {
	return `<Response><Say voice="alice">` + html.EscapeString(script) + `</Say></Response>`
}
