package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gymdesk/config"
)

// ErrProviderRejected means the gateway answered but did not accept the message.
var ErrProviderRejected = errors.New("provider rejected message")

// SMSProvider is one SMS gateway. Send returns nil only when the gateway
// accepted the message.
type SMSProvider interface {
	Name() string
	Send(ctx context.Context, phone, body string) error
}

type Fast2SMS struct {
	apiKey   string
	baseURL  string
	senderID string
	client   *http.Client
}

func NewFast2SMS(cfg config.Fast2SMSConfig, client *http.Client) *Fast2SMS {
	return &Fast2SMS{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		senderID: cfg.SenderID,
		client:   client,
	}
}

func (f *Fast2SMS) Name() string { return "fast2sms" }

type fast2smsResponse struct {
	Return  bool            `json:"return"`
	Message json.RawMessage `json:"message"`
}

// Send posts to the bulkV2 endpoint with the bare local number.
func (f *Fast2SMS) Send(ctx context.Context, phone, body string) error {
	if f.apiKey == "" {
		return fmt.Errorf("fast2sms: %w", ErrNotConfigured)
	}

	payload, err := json.Marshal(map[string]string{
		"message":   body,
		"route":     "v3",
		"language":  "english",
		"numbers":   phone,
		"sender_id": f.senderID,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/dev/bulkV2", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("authorization", f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fast2sms request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("fast2sms: status %d: %s: %w", resp.StatusCode, bytes.TrimSpace(raw), ErrProviderRejected)
	}

	var out fast2smsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("fast2sms: decode response: %w", err)
	}
	if !out.Return {
		return fmt.Errorf("fast2sms: %s: %w", out.Message, ErrProviderRejected)
	}
	return nil
}

type Twilio struct {
	accountSID  string
	authToken   string
	from        string
	baseURL     string
	countryCode string
	client      *http.Client
}

func NewTwilio(cfg config.TwilioConfig, client *http.Client) *Twilio {
	return &Twilio{
		accountSID:  cfg.AccountSID,
		authToken:   cfg.AuthToken,
		from:        cfg.FromNumber,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		countryCode: cfg.CountryCode,
		client:      client,
	}
}

func (t *Twilio) Name() string { return "twilio" }

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send creates a message through the REST API. The number is sent in
// international format.
func (t *Twilio) Send(ctx context.Context, phone, body string) error {
	if t.accountSID == "" || t.authToken == "" || t.from == "" {
		return fmt.Errorf("twilio: %w", ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("To", t.international(phone))
	form.Set("From", t.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, url.PathEscape(t.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr twilioError
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiErr)
		return fmt.Errorf("twilio: status %d code %d %s: %w", resp.StatusCode, apiErr.Code, apiErr.Message, ErrProviderRejected)
	}
	return nil
}

func (t *Twilio) international(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return t.countryCode + phone
}
