package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/n8n"
)

// fakeSender captures the webhook payload and returns a canned result
type fakeSender struct {
	payloads []n8n.SpinPayload
	response string
	err      error
}

func (f *fakeSender) Send(ctx context.Context, payload n8n.SpinPayload) (string, error) {
	f.payloads = append(f.payloads, payload)
	return f.response, f.err
}

func TestNotifySpin(t *testing.T) {
	spinRepo := newFakeSpinRepo()
	sender := &fakeSender{response: `{"ok":true}`}
	svc := NewNotificationService(spinRepo, sender)

	spin := spinRepo.mustAdd(t, linkedSpin(models.SpinStatusActive, 0))
	spin.PhoneHash = "abc123"
	if err := svc.NotifySpin(context.Background(), spin); err != nil {
		t.Fatalf("NotifySpin returned error: %v", err)
	}

	if len(sender.payloads) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sender.payloads))
	}
	payload := sender.payloads[0]
	if payload.CouponCode != spin.CouponCode {
		t.Errorf("payload coupon = %q, want %q", payload.CouponCode, spin.CouponCode)
	}
	if payload.Phone != spin.Phone || payload.PhoneMasked != spin.PhoneMasked {
		t.Errorf("payload phone fields = %q/%q", payload.Phone, payload.PhoneMasked)
	}
	if !strings.HasPrefix(payload.IdempotencyKey, spin.CampaignID+"-"+spin.PhoneHash+"-") {
		t.Errorf("IdempotencyKey = %q, want campaign-hash-millis", payload.IdempotencyKey)
	}

	stored, _ := spinRepo.FindByID(context.Background(), spin.ID)
	if !stored.N8NSent {
		t.Error("N8NSent should be true after delivery")
	}
	if stored.N8NSentAt.IsZero() {
		t.Error("N8NSentAt should be recorded")
	}
	if stored.N8NResponse != `{"ok":true}` {
		t.Errorf("N8NResponse = %q", stored.N8NResponse)
	}
	if stored.N8NRetryCount != 0 {
		t.Errorf("N8NRetryCount = %d, want 0", stored.N8NRetryCount)
	}
}

func TestNotifySpinFailure(t *testing.T) {
	spinRepo := newFakeSpinRepo()
	sender := &fakeSender{response: "bad gateway", err: errors.New("n8n webhook returned status 502")}
	svc := NewNotificationService(spinRepo, sender)

	spin := spinRepo.mustAdd(t, linkedSpin(models.SpinStatusActive, 0))
	if err := svc.NotifySpin(context.Background(), spin); err == nil {
		t.Fatal("expected the delivery error to propagate")
	}

	stored, _ := spinRepo.FindByID(context.Background(), spin.ID)
	if stored.N8NSent {
		t.Error("N8NSent should stay false after a failed delivery")
	}
	if stored.N8NRetryCount != 1 {
		t.Errorf("N8NRetryCount = %d, want 1", stored.N8NRetryCount)
	}
	if stored.N8NError == "" {
		t.Error("N8NError should record the failure")
	}
	// The spin itself is untouched
	if stored.Status != models.SpinStatusActive {
		t.Errorf("Status = %q, want active", stored.Status)
	}
}

func TestNotifySpinNotConfigured(t *testing.T) {
	spinRepo := newFakeSpinRepo()
	sender := &fakeSender{err: n8n.ErrNotConfigured}
	svc := NewNotificationService(spinRepo, sender)

	spin := spinRepo.mustAdd(t, linkedSpin(models.SpinStatusActive, 0))
	err := svc.NotifySpin(context.Background(), spin)
	if !errors.Is(err, n8n.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	stored, _ := spinRepo.FindByID(context.Background(), spin.ID)
	if stored.N8NRetryCount != 1 {
		t.Errorf("N8NRetryCount = %d, want 1", stored.N8NRetryCount)
	}
}
