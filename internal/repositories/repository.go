package repositories

import (
	"context"
	"errors"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDuplicatePhone is returned by SpinRepository.Create when the unique
// (campaignId, phone) index rejects the insert. This is the authoritative
// duplicate check; callers treat it as an expected outcome, not a failure.
var ErrDuplicatePhone = errors.New("phone has already spun for this campaign")

// SpinRepository defines the interface for spin data operations
type SpinRepository interface {
	// EnsureIndexes creates the unique (campaignId, phone) index the
	// single-spin guarantee depends on. Must succeed before serving spins.
	EnsureIndexes(ctx context.Context) error

	Create(ctx context.Context, spin *models.Spin) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Spin, error)
	FindByCampaignAndPhone(ctx context.Context, campaignID, phone string) (*models.Spin, error)
	FindByCampaign(ctx context.Context, campaignID string) ([]*models.Spin, error)
	// FindActiveLinked returns spins with status active and a non-zero
	// external discount id, the input set for a status refresh sweep.
	FindActiveLinked(ctx context.Context) ([]*models.Spin, error)

	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.SpinStatus) error
	ApplyDiscountSync(ctx context.Context, id primitive.ObjectID, sync models.DiscountSync) error
	// ClearDiscountLink removes the external linkage and forces the spin
	// into the expired state. The row stays; the phone remains consumed.
	ClearDiscountLink(ctx context.Context, id primitive.ObjectID) error
	UpdateNotifyResult(ctx context.Context, id primitive.ObjectID, sent bool, response, errMsg string) error

	GetStatistics(ctx context.Context, campaignID string) (*models.SpinStatistics, error)
}

// PrizeRepository defines the interface for prize configuration operations
type PrizeRepository interface {
	FindActiveByCampaign(ctx context.Context, campaignID string) ([]*models.PrizeConfig, error)
	Create(ctx context.Context, prize *models.PrizeConfig) error
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
}
