package haravan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
)

// Sentinel errors mapped from the discount platform's HTTP responses.
// None of these are retried automatically; they are surfaced to the operator.
var (
	ErrNotFound             = errors.New("discount not found")
	ErrAlreadyExists        = errors.New("discount code already exists")
	ErrInvalidConfiguration = errors.New("invalid discount configuration")
)

// API is the discount platform surface this backend depends on
type API interface {
	CreateDiscount(ctx context.Context, params CreateDiscountParams) (*Discount, error)
	GetDiscount(ctx context.Context, discountID int64) (*Discount, error)
	// DeleteDiscount is idempotent: a missing discount is treated as
	// already deleted, not as an error.
	DeleteDiscount(ctx context.Context, discountID int64) error
}

// Discount mirrors the fields of the platform's discount record this
// backend cares about
type Discount struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	IsPromotion bool   `json:"is_promotion"`
	TimesUsed   int    `json:"times_used"`
	UsageLimit  int    `json:"usage_limit"`
	StartsAt    string `json:"starts_at,omitempty"`
	EndsAt      string `json:"ends_at,omitempty"`
}

// CreateDiscountParams describes the discount to provision for a spin
type CreateDiscountParams struct {
	Code       string
	Value      int
	StartsAt   time.Time
	EndsAt     time.Time
	CampaignID string // combined with Code into the idempotency key
}

// Client is an HTTP client for the Haravan discount API
type Client struct {
	BaseURL      string
	AuthToken    string
	CollectionID int64
	MockAPI      bool
	client       *http.Client
}

// Compile-time check to ensure Client implements API
var _ API = (*Client)(nil)

// NewClient creates a new Haravan API client. The timeout stays under the
// 30s the platform allows so our callers never hit an upstream limit first.
func NewClient(baseURL, authToken string, collectionID int64, mockAPI bool) *Client {
	return &Client{
		BaseURL:      baseURL,
		AuthToken:    authToken,
		CollectionID: collectionID,
		MockAPI:      mockAPI,
		client:       &http.Client{Timeout: 25 * time.Second},
	}
}

type discountEnvelope struct {
	Discount Discount `json:"discount"`
}

// CreateDiscount provisions a single-use discount code. The request carries
// an X-Idempotency-Key derived from (campaignId, code) so a retry of the same
// logical creation cannot produce a second record.
func (c *Client) CreateDiscount(ctx context.Context, params CreateDiscountParams) (*Discount, error) {
	if c.MockAPI {
		return c.mockCreateDiscount(params)
	}

	body := map[string]interface{}{
		"discount": map[string]interface{}{
			"code":         params.Code,
			"is_promotion": true,

			"applies_once":      true,
			"usage_limit":       1,
			"once_per_customer": true,
			"rule_customs": []map[string]string{
				{"name": "customer_limit_used", "value": "1"},
			},

			"products_selection":      "collection_prerequisite",
			"entitled_collection_ids": []int64{c.CollectionID},

			"take_type":     "fixed_amount",
			"value":         params.Value,
			"discount_type": "product_amount",

			"starts_at": FormatUTCPlus7(params.StartsAt),
			"ends_at":   FormatUTCPlus7(params.EndsAt),

			"customers_selection": "all",
			"provinces_selection": "all",
			"channels_selection":  "all",
			"locations_selection": "all",
			"location_ids":        []int64{},
		},
	}

	headers := map[string]string{
		"X-Idempotency-Key": fmt.Sprintf("%s-%s", params.CampaignID, params.Code),
	}
	var envelope discountEnvelope
	if err := c.do(ctx, http.MethodPost, "/com/discounts.json", body, headers, &envelope); err != nil {
		return nil, err
	}
	normalize(&envelope.Discount)
	return &envelope.Discount, nil
}

// GetDiscount fetches a discount's current usage counters
func (c *Client) GetDiscount(ctx context.Context, discountID int64) (*Discount, error) {
	if c.MockAPI {
		return c.mockGetDiscount(discountID)
	}

	var envelope discountEnvelope
	path := fmt.Sprintf("/com/discounts/%d.json", discountID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, err
	}
	normalize(&envelope.Discount)
	return &envelope.Discount, nil
}

// DeleteDiscount removes a discount. A 404 means it is already gone, which
// is the outcome the caller wanted.
func (c *Client) DeleteDiscount(ctx context.Context, discountID int64) error {
	if c.MockAPI {
		return nil
	}

	path := fmt.Sprintf("/com/discounts/%d.json", discountID)
	err := c.do(ctx, http.MethodDelete, path, nil, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrAlreadyExists
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return ErrInvalidConfiguration
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("haravan API error: status %d: %s", resp.StatusCode, string(data))
	}
}

// normalize applies the platform's implicit defaults for absent counters
func normalize(d *Discount) {
	if d.UsageLimit == 0 {
		d.UsageLimit = 1
	}
}

// FormatUTCPlus7 renders a timestamp the way the platform expects:
// shifted to UTC+7 and suffixed with the +07:00 offset.
func FormatUTCPlus7(t time.Time) string {
	return t.UTC().Add(7*time.Hour).Format("2006-01-02T15:04:05.000") + "+07:00"
}

// CalculateStatus derives a spin's status from the external discount record.
// This is the single source of truth for status; it is never set ad hoc:
//
//	is_promotion == false            -> expired
//	times_used < usage_limit         -> active
//	times_used >= usage_limit        -> used
func CalculateStatus(isPromotion bool, timesUsed, usageLimit int) models.SpinStatus {
	if !isPromotion {
		return models.SpinStatusExpired
	}
	if timesUsed < usageLimit {
		return models.SpinStatusActive
	}
	return models.SpinStatusUsed
}

// mockCreateDiscount mocks discount creation for local development
func (c *Client) mockCreateDiscount(params CreateDiscountParams) (*Discount, error) {
	return &Discount{
		ID:          rand.Int63n(1_000_000_000),
		Code:        params.Code,
		IsPromotion: true,
		TimesUsed:   0,
		UsageLimit:  1,
		StartsAt:    FormatUTCPlus7(params.StartsAt),
		EndsAt:      FormatUTCPlus7(params.EndsAt),
	}, nil
}

// mockGetDiscount mocks a discount fetch for local development
func (c *Client) mockGetDiscount(discountID int64) (*Discount, error) {
	return &Discount{
		ID:          discountID,
		IsPromotion: true,
		TimesUsed:   0,
		UsageLimit:  1,
	}, nil
}
