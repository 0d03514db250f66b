package services

import (
	"context"
	"fmt"
	"time"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/haravan"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DiscountServiceImpl implements DiscountService
var _ DiscountService = (*DiscountServiceImpl)(nil)

// RefreshResult describes one spin whose mirror fields changed during a sweep
type RefreshResult struct {
	SpinID    string            `json:"spin_id"`
	Code      string            `json:"code"`
	OldStatus models.SpinStatus `json:"old_status"`
	NewStatus models.SpinStatus `json:"new_status"`
	TimesUsed int               `json:"times_used"`
}

// RefreshError describes one spin the sweep could not refresh
type RefreshError struct {
	SpinID string `json:"spin_id"`
	Error  string `json:"error"`
}

// RefreshReport is the outcome of a batch status refresh
type RefreshReport struct {
	Updated int             `json:"updated"`
	Results []RefreshResult `json:"results"`
	Errors  []RefreshError  `json:"errors,omitempty"`
}

// DiscountServiceImpl reconciles spins with the external discount platform
type DiscountServiceImpl struct {
	spinRepo repositories.SpinRepository
	client   haravan.API

	// pause between external calls during a sweep; a rate-limit courtesy,
	// not a correctness requirement
	refreshPause time.Duration
}

// NewDiscountService creates a new DiscountServiceImpl
func NewDiscountService(spinRepo repositories.SpinRepository, client haravan.API) *DiscountServiceImpl {
	return &DiscountServiceImpl{
		spinRepo:     spinRepo,
		client:       client,
		refreshPause: 100 * time.Millisecond,
	}
}

// CreateForSpin provisions the external discount keyed by the spin's coupon
// code and links it. Safe against retries: the platform call carries an
// idempotency key derived from (campaignId, code), and an already-linked
// spin is rejected before any call is made.
func (s *DiscountServiceImpl) CreateForSpin(ctx context.Context, spin *models.Spin) (*haravan.Discount, error) {
	if spin.Linked() {
		return nil, ErrDiscountAlreadyLinked
	}

	discount, err := s.client.CreateDiscount(ctx, haravan.CreateDiscountParams{
		Code:       spin.CouponCode,
		Value:      spin.Prize,
		StartsAt:   spin.CreatedAt,
		EndsAt:     spin.ExpiresAt,
		CampaignID: spin.CampaignID,
	})
	if err != nil {
		slog.Error("failed to create external discount", "error", err,
			"spinId", spin.ID.Hex(), "code", spin.CouponCode)
		return nil, fmt.Errorf("failed to create external discount: %w", err)
	}

	status := haravan.CalculateStatus(discount.IsPromotion, discount.TimesUsed, discount.UsageLimit)
	sync := models.DiscountSync{
		DiscountID:  discount.ID,
		IsPromotion: discount.IsPromotion,
		TimesUsed:   discount.TimesUsed,
		UsageLimit:  discount.UsageLimit,
		Status:      status,
	}
	if err := s.spinRepo.ApplyDiscountSync(ctx, spin.ID, sync); err != nil {
		// The external record exists; the spin stays valid but unlinked
		// and an operator can retry the link manually.
		slog.Error("discount created but spin link failed", "error", err,
			"spinId", spin.ID.Hex(), "discountId", discount.ID)
		return discount, fmt.Errorf("discount created but spin update failed: %w", err)
	}

	slog.Info("external discount linked", "spinId", spin.ID.Hex(),
		"discountId", discount.ID, "status", status)
	return discount, nil
}

// DeleteForSpin removes the external discount and expires the spin locally.
// Deleting an already-absent discount succeeds; the end state is the same.
func (s *DiscountServiceImpl) DeleteForSpin(ctx context.Context, spin *models.Spin) error {
	if !spin.Linked() {
		return ErrDiscountNotLinked
	}

	if err := s.client.DeleteDiscount(ctx, spin.DiscountID); err != nil {
		return fmt.Errorf("failed to delete external discount: %w", err)
	}

	if err := s.spinRepo.ClearDiscountLink(ctx, spin.ID); err != nil {
		return fmt.Errorf("discount deleted but spin update failed: %w", err)
	}

	slog.Info("external discount deleted", "spinId", spin.ID.Hex(), "discountId", spin.DiscountID)
	return nil
}

// RefreshStatuses re-fetches the usage counters of every active linked spin
// and recomputes its status. Spins are processed one at a time with a small
// pause between external calls; one failure never aborts the sweep.
func (s *DiscountServiceImpl) RefreshStatuses(ctx context.Context) (*RefreshReport, error) {
	spins, err := s.spinRepo.FindActiveLinked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active spins: %w", err)
	}

	report := &RefreshReport{Results: []RefreshResult{}}
	for i, spin := range spins {
		if i > 0 {
			select {
			case <-time.After(s.refreshPause):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}

		discount, err := s.client.GetDiscount(ctx, spin.DiscountID)
		if err != nil {
			slog.Warn("failed to refresh spin", "error", err, "spinId", spin.ID.Hex())
			report.Errors = append(report.Errors, RefreshError{SpinID: spin.ID.Hex(), Error: err.Error()})
			continue
		}

		newStatus := haravan.CalculateStatus(discount.IsPromotion, discount.TimesUsed, discount.UsageLimit)
		if newStatus == spin.Status && discount.TimesUsed == spin.TimesUsed {
			continue
		}

		sync := models.DiscountSync{
			DiscountID:  spin.DiscountID,
			IsPromotion: discount.IsPromotion,
			TimesUsed:   discount.TimesUsed,
			UsageLimit:  discount.UsageLimit,
			Status:      newStatus,
		}
		if err := s.spinRepo.ApplyDiscountSync(ctx, spin.ID, sync); err != nil {
			report.Errors = append(report.Errors, RefreshError{SpinID: spin.ID.Hex(), Error: err.Error()})
			continue
		}

		report.Results = append(report.Results, RefreshResult{
			SpinID:    spin.ID.Hex(),
			Code:      spin.CouponCode,
			OldStatus: spin.Status,
			NewStatus: newStatus,
			TimesUsed: discount.TimesUsed,
		})
	}

	report.Updated = len(report.Results)
	slog.Info("status refresh completed", "scanned", len(spins),
		"updated", report.Updated, "errors", len(report.Errors))
	return report, nil
}
