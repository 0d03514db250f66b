package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"github.com/luckywheel-vn/luckywheel-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

// Coupons are valid for a fixed window from the moment of the spin
const couponValidity = 7 * 24 * time.Hour

const couponCodeLength = 6

// Compile-time check to ensure SpinServiceImpl implements SpinService
var _ SpinService = (*SpinServiceImpl)(nil)

// SpinServiceImpl handles spin-related business logic
type SpinServiceImpl struct {
	spinRepo  repositories.SpinRepository
	prizeRepo repositories.PrizeRepository
	pepper    string

	// randIntn is swapped out in tests for deterministic draws
	randIntn func(n int) int
}

// NewSpinService creates a new SpinServiceImpl
func NewSpinService(spinRepo repositories.SpinRepository, prizeRepo repositories.PrizeRepository, phonePepper string) *SpinServiceImpl {
	return &SpinServiceImpl{
		spinRepo:  spinRepo,
		prizeRepo: prizeRepo,
		pepper:    phonePepper,
		randIntn:  rand.Intn,
	}
}

// CheckEligibility looks up an existing spin for (campaignId, phone).
// Advisory only: the unique index decides at insert time.
func (s *SpinServiceImpl) CheckEligibility(ctx context.Context, campaignID, phone string) (*models.Spin, error) {
	spin, err := s.spinRepo.FindByCampaignAndPhone(ctx, campaignID, phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check existing spin: %w", err)
	}
	return spin, nil
}

// CreateSpin runs one spin attempt: weighted prize selection, coupon code
// generation, then the authoritative insert. The row is inserted with
// status=active optimistically; discount sync recomputes it on link.
func (s *SpinServiceImpl) CreateSpin(ctx context.Context, input CreateSpinInput) (*models.Spin, error) {
	prize, err := s.selectPrize(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateCouponCode(couponCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate coupon code: %w", err)
	}

	name := input.CustomerName
	if name == "" {
		name = "Anonymous"
	}

	now := time.Now()
	spin := &models.Spin{
		CampaignID:   input.CampaignID,
		Phone:        input.Phone,
		PhoneHash:    utils.HashPhone(input.Phone, s.pepper),
		PhoneMasked:  utils.MaskPhone(input.Phone),
		CustomerName: name,
		Prize:        prize.Value,
		PrizeLabel:   prize.Label,
		CouponCode:   code,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
		Status:       models.SpinStatusActive,
		UsageLimit:   1,
		ExpiresAt:    now.Add(couponValidity),
	}

	if err := s.spinRepo.Create(ctx, spin); err != nil {
		if errors.Is(err, repositories.ErrDuplicatePhone) {
			// Expected outcome under racing requests; not an error log
			slog.Info("duplicate spin rejected by unique constraint",
				"campaignId", input.CampaignID, "phone", spin.PhoneMasked)
			return nil, err
		}
		slog.Error("failed to save spin", "error", err, "campaignId", input.CampaignID)
		return nil, fmt.Errorf("failed to save spin: %w", err)
	}

	slog.Info("spin saved", "spinId", spin.ID.Hex(), "campaignId", spin.CampaignID,
		"phone", spin.PhoneMasked, "prize", spin.Prize, "code", spin.CouponCode)
	return spin, nil
}

// selectPrize draws a prize proportionally to the configured weights.
func (s *SpinServiceImpl) selectPrize(ctx context.Context, campaignID string) (*models.PrizeConfig, error) {
	prizes, err := s.prizeRepo.FindActiveByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prize configuration: %w", err)
	}
	if len(prizes) == 0 {
		return nil, ErrNoPrizesConfigured
	}

	totalWeight := 0
	for _, p := range prizes {
		totalWeight += p.Weight
	}
	if totalWeight <= 0 {
		return nil, ErrNoPrizesConfigured
	}

	draw := s.randIntn(totalWeight)
	cumulative := 0
	for _, p := range prizes {
		cumulative += p.Weight
		if draw < cumulative {
			return p, nil
		}
	}

	// Unreachable when weights sum correctly; fall back to the first
	// prize rather than failing the spin.
	slog.Warn("weighted draw fell through, using first prize",
		"campaignId", campaignID, "draw", draw, "totalWeight", totalWeight)
	return prizes[0], nil
}

// GetActivePrizes returns the campaign's wheel configuration
func (s *SpinServiceImpl) GetActivePrizes(ctx context.Context, campaignID string) ([]*models.PrizeConfig, error) {
	return s.prizeRepo.FindActiveByCampaign(ctx, campaignID)
}

// GetSpinByID retrieves a spin by ID
func (s *SpinServiceImpl) GetSpinByID(ctx context.Context, id primitive.ObjectID) (*models.Spin, error) {
	return s.spinRepo.FindByID(ctx, id)
}

// ListSpins returns a campaign's spins, newest first
func (s *SpinServiceImpl) ListSpins(ctx context.Context, campaignID string) ([]*models.Spin, error) {
	return s.spinRepo.FindByCampaign(ctx, campaignID)
}

// GetStatistics aggregates a campaign's spins
func (s *SpinServiceImpl) GetStatistics(ctx context.Context, campaignID string) (*models.SpinStatistics, error) {
	return s.spinRepo.GetStatistics(ctx, campaignID)
}

// UpdateSpinStatus sets a spin's status manually (operator action) and
// returns the updated record
func (s *SpinServiceImpl) UpdateSpinStatus(ctx context.Context, id primitive.ObjectID, status models.SpinStatus) (*models.Spin, error) {
	if err := s.spinRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.spinRepo.FindByID(ctx, id)
}
