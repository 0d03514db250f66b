package services

import (
	"context"
	"errors"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/haravan"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNoPrizesConfigured means the campaign has no active prize
	// configuration; the wheel cannot spin. Operator/config error.
	ErrNoPrizesConfigured = errors.New("no active prizes configured for campaign")

	// ErrDiscountAlreadyLinked means a spin already has an external
	// discount; manual creation must not make a second one.
	ErrDiscountAlreadyLinked = errors.New("discount already created for this spin")

	// ErrDiscountNotLinked means a spin has no external discount to act on
	ErrDiscountNotLinked = errors.New("spin has no external discount")
)

// CreateSpinInput is the validated input for a spin attempt
type CreateSpinInput struct {
	CampaignID   string
	Phone        string
	CustomerName string
	IPAddress    string
	UserAgent    string
}

// SpinService defines the interface for spin-related operations
type SpinService interface {
	// CheckEligibility performs the advisory duplicate lookup. It returns
	// (nil, nil) when the phone may spin, or the existing spin when not.
	// A nil result does not reserve the phone; CreateSpin is authoritative.
	CheckEligibility(ctx context.Context, campaignID, phone string) (*models.Spin, error)

	// CreateSpin selects a prize, generates a coupon code and inserts the
	// spin row. Returns repositories.ErrDuplicatePhone (wrapped) when the
	// unique constraint rejects the insert.
	CreateSpin(ctx context.Context, input CreateSpinInput) (*models.Spin, error)

	GetActivePrizes(ctx context.Context, campaignID string) ([]*models.PrizeConfig, error)
	GetSpinByID(ctx context.Context, id primitive.ObjectID) (*models.Spin, error)
	ListSpins(ctx context.Context, campaignID string) ([]*models.Spin, error)
	GetStatistics(ctx context.Context, campaignID string) (*models.SpinStatistics, error)
	UpdateSpinStatus(ctx context.Context, id primitive.ObjectID, status models.SpinStatus) (*models.Spin, error)
}

// DiscountService defines the interface for external discount operations
type DiscountService interface {
	// CreateForSpin provisions the external discount for a spin and links
	// it, deriving the spin's status from the platform's counters.
	CreateForSpin(ctx context.Context, spin *models.Spin) (*haravan.Discount, error)

	// DeleteForSpin removes the external discount (idempotently) and
	// expires the spin locally. The phone stays consumed.
	DeleteForSpin(ctx context.Context, spin *models.Spin) error

	// RefreshStatuses sweeps every active linked spin, re-fetching usage
	// counters and recomputing status. Per-item failures are collected,
	// never aborting the batch.
	RefreshStatuses(ctx context.Context) (*RefreshReport, error)
}

// NotificationService defines the interface for spin result notifications
type NotificationService interface {
	// NotifySpin relays the spin summary to the automation webhook and
	// records the outcome on the spin row. Never fails the spin itself.
	NotifySpin(ctx context.Context, spin *models.Spin) error
}

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}
