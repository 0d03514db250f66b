package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpinStatus represents the redemption status of a spin's coupon
type SpinStatus string

const (
	SpinStatusActive  SpinStatus = "active"
	SpinStatusUsed    SpinStatus = "used"
	SpinStatusExpired SpinStatus = "expired"
)

// ValidSpinStatus reports whether s is one of the known statuses
func ValidSpinStatus(s string) bool {
	switch SpinStatus(s) {
	case SpinStatusActive, SpinStatusUsed, SpinStatusExpired:
		return true
	}
	return false
}

// Spin represents one customer's single participation in a campaign.
// Uniqueness on (campaignId, phone) is enforced by a unique index in the
// spins collection; this record is never deleted, only relinked or expired.
type Spin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CampaignID   string             `bson:"campaignId" json:"campaign_id"`
	Phone        string             `bson:"phone" json:"-"`
	PhoneHash    string             `bson:"phoneHash" json:"phone_hash"`
	PhoneMasked  string             `bson:"phoneMasked" json:"phone_masked"`
	CustomerName string             `bson:"customerName" json:"customer_name"`
	Prize        int                `bson:"prize" json:"prize"`
	PrizeLabel   string             `bson:"prizeLabel" json:"prize_label"`
	CouponCode   string             `bson:"couponCode" json:"coupon_code"`
	IPAddress    string             `bson:"ipAddress,omitempty" json:"-"`
	UserAgent    string             `bson:"userAgent,omitempty" json:"-"`
	Status       SpinStatus         `bson:"status" json:"status"`

	// Mirror of the external discount record, refreshed by discount sync.
	// DiscountID == 0 means the spin is not linked to an external discount yet.
	DiscountID  int64 `bson:"discountId,omitempty" json:"discount_id,omitempty"`
	IsPromotion bool  `bson:"isPromotion" json:"is_promotion"`
	TimesUsed   int   `bson:"timesUsed" json:"times_used"`
	UsageLimit  int   `bson:"usageLimit" json:"usage_limit"`

	// Webhook delivery bookkeeping
	N8NSent       bool      `bson:"n8nSent" json:"n8n_sent"`
	N8NSentAt     time.Time `bson:"n8nSentAt,omitempty" json:"n8n_sent_at,omitempty"`
	N8NResponse   string    `bson:"n8nResponse,omitempty" json:"n8n_response,omitempty"`
	N8NError      string    `bson:"n8nError,omitempty" json:"n8n_error,omitempty"`
	N8NRetryCount int       `bson:"n8nRetryCount" json:"n8n_retry_count"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expires_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// Linked reports whether an external discount record is attached
func (s *Spin) Linked() bool {
	return s.DiscountID != 0
}

// DiscountSync carries the external discount counters applied to a spin
// on link and on every refresh.
type DiscountSync struct {
	DiscountID  int64
	IsPromotion bool
	TimesUsed   int
	UsageLimit  int
	Status      SpinStatus
}
