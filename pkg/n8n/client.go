package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no webhook URL is set. Callers record it
// and move on; the spin itself is unaffected.
var ErrNotConfigured = errors.New("n8n webhook URL not configured")

// Sender delivers a spin summary to the automation webhook
type Sender interface {
	Send(ctx context.Context, payload SpinPayload) (string, error)
}

// SpinPayload is the webhook body. It carries enough identifying data for
// the receiving automation to de-duplicate on the idempotency key.
type SpinPayload struct {
	CampaignID     string `json:"campaign_id"`
	Phone          string `json:"phone"`
	PhoneHash      string `json:"phone_hash"`
	PhoneMasked    string `json:"phone_masked"`
	CustomerName   string `json:"customer_name"`
	Prize          int    `json:"prize"`
	CouponCode     string `json:"coupon_code"`
	ExpiresAt      string `json:"expires_at"`
	Timestamp      int64  `json:"timestamp"`
	UserAgent      string `json:"user_agent,omitempty"`
	IP             string `json:"ip,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Client posts spin results to an n8n webhook
type Client struct {
	WebhookURL string
	APIKey     string
	Secret     string
	client     *http.Client
}

// Compile-time check to ensure Client implements Sender
var _ Sender = (*Client)(nil)

// NewClient creates a new webhook client. The 25s timeout stays under the
// 30s limit typical upstream routers impose on the original request.
func NewClient(webhookURL, apiKey, secret string) *Client {
	return &Client{
		WebhookURL: webhookURL,
		APIKey:     apiKey,
		Secret:     secret,
		client:     &http.Client{Timeout: 25 * time.Second},
	}
}

// Send delivers the payload with a single POST and returns the webhook's
// response body. No retries here; the caller records the outcome.
func (c *Client) Send(ctx context.Context, payload SpinPayload) (string, error) {
	if c.WebhookURL == "" {
		return "", ErrNotConfigured
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("lucky-wheel", c.APIKey)
	req.Header.Set("X-Webhook-Secret", c.Secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(body), fmt.Errorf("n8n webhook returned status %d", resp.StatusCode)
	}
	return string(body), nil
}
