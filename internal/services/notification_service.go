package services

import (
	"context"
	"fmt"
	"time"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/n8n"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure NotificationServiceImpl implements NotificationService
var _ NotificationService = (*NotificationServiceImpl)(nil)

// NotificationServiceImpl relays spin results to the automation webhook
type NotificationServiceImpl struct {
	spinRepo repositories.SpinRepository
	sender   n8n.Sender
}

// NewNotificationService creates a new NotificationServiceImpl
func NewNotificationService(spinRepo repositories.SpinRepository, sender n8n.Sender) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		spinRepo: spinRepo,
		sender:   sender,
	}
}

// NotifySpin delivers the spin summary and records the outcome on the spin
// row. A failed delivery increments the retry counter; it never rolls back
// or fails the spin.
func (s *NotificationServiceImpl) NotifySpin(ctx context.Context, spin *models.Spin) error {
	payload := n8n.SpinPayload{
		CampaignID:   spin.CampaignID,
		Phone:        spin.Phone,
		PhoneHash:    spin.PhoneHash,
		PhoneMasked:  spin.PhoneMasked,
		CustomerName: spin.CustomerName,
		Prize:        spin.Prize,
		CouponCode:   spin.CouponCode,
		ExpiresAt:    spin.ExpiresAt.Format(time.RFC3339),
		Timestamp:    time.Now().UnixMilli(),
		UserAgent:    spin.UserAgent,
		IP:           spin.IPAddress,
		IdempotencyKey: fmt.Sprintf("%s-%s-%d",
			spin.CampaignID, spin.PhoneHash, time.Now().UnixMilli()),
	}

	response, err := s.sender.Send(ctx, payload)
	if err != nil {
		slog.Warn("spin notification failed", "error", err,
			"spinId", spin.ID.Hex(), "phone", spin.PhoneMasked)
		if updateErr := s.spinRepo.UpdateNotifyResult(ctx, spin.ID, false, response, err.Error()); updateErr != nil {
			slog.Error("failed to record notification failure", "error", updateErr, "spinId", spin.ID.Hex())
		}
		return err
	}

	if err := s.spinRepo.UpdateNotifyResult(ctx, spin.ID, true, response, ""); err != nil {
		slog.Error("failed to record notification success", "error", err, "spinId", spin.ID.Hex())
		return err
	}

	slog.Info("spin notification sent", "spinId", spin.ID.Hex(), "phone", spin.PhoneMasked)
	return nil
}
