package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"github.com/luckywheel-vn/luckywheel-backend/internal/services"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/haravan"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSpinService struct {
	spin      *models.Spin
	createErr error
	existing  *models.Spin
	prizes    []*models.PrizeConfig
}

func (f *fakeSpinService) CheckEligibility(ctx context.Context, campaignID, phone string) (*models.Spin, error) {
	return f.existing, nil
}

func (f *fakeSpinService) CreateSpin(ctx context.Context, input services.CreateSpinInput) (*models.Spin, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.spin, nil
}

func (f *fakeSpinService) GetActivePrizes(ctx context.Context, campaignID string) ([]*models.PrizeConfig, error) {
	return f.prizes, nil
}

func (f *fakeSpinService) GetSpinByID(ctx context.Context, id primitive.ObjectID) (*models.Spin, error) {
	return f.spin, nil
}

func (f *fakeSpinService) ListSpins(ctx context.Context, campaignID string) ([]*models.Spin, error) {
	return nil, nil
}

func (f *fakeSpinService) GetStatistics(ctx context.Context, campaignID string) (*models.SpinStatistics, error) {
	return &models.SpinStatistics{}, nil
}

func (f *fakeSpinService) UpdateSpinStatus(ctx context.Context, id primitive.ObjectID, status models.SpinStatus) (*models.Spin, error) {
	return f.spin, nil
}

type fakeDiscountService struct {
	called chan *models.Spin
}

func (f *fakeDiscountService) CreateForSpin(ctx context.Context, spin *models.Spin) (*haravan.Discount, error) {
	if f.called != nil {
		f.called <- spin
	}
	return &haravan.Discount{ID: 1}, nil
}

func (f *fakeDiscountService) DeleteForSpin(ctx context.Context, spin *models.Spin) error {
	return nil
}

func (f *fakeDiscountService) RefreshStatuses(ctx context.Context) (*services.RefreshReport, error) {
	return &services.RefreshReport{}, nil
}

type fakeNotificationService struct {
	called chan *models.Spin
}

func (f *fakeNotificationService) NotifySpin(ctx context.Context, spin *models.Spin) error {
	if f.called != nil {
		f.called <- spin
	}
	return nil
}

func testSpin() *models.Spin {
	now := time.Now()
	return &models.Spin{
		ID:          primitive.NewObjectID(),
		CampaignID:  "camp-1",
		Phone:       "0912345678",
		PhoneMasked: "091***5678",
		Prize:       50000,
		CouponCode:  "AB12CD",
		Status:      models.SpinStatusActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
	}
}

func newSpinRouter(h *SpinHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/check-eligibility", h.CheckEligibility)
	router.POST("/spin", h.Spin)
	router.GET("/prizes/:campaignId", h.GetPrizes)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSpinSuccess(t *testing.T) {
	discounts := &fakeDiscountService{called: make(chan *models.Spin, 1)}
	notify := &fakeNotificationService{called: make(chan *models.Spin, 1)}
	h := NewSpinHandler(&fakeSpinService{spin: testSpin()}, discounts, notify)
	router := newSpinRouter(h)

	w := postJSON(router, "/spin", `{"phone":"0912345678","name":"A","campaign_id":"camp-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v", resp["success"])
	}
	if resp["code"] != "AB12CD" {
		t.Errorf("code = %v", resp["code"])
	}
	if resp["prize"] != float64(50000) {
		t.Errorf("prize = %v", resp["prize"])
	}
	if resp["phone_masked"] != "091***5678" {
		t.Errorf("phone_masked = %v", resp["phone_masked"])
	}

	// Both background jobs run after the response
	select {
	case <-discounts.called:
	case <-time.After(time.Second):
		t.Fatal("discount creation was never started")
	}
	select {
	case <-notify.called:
	case <-time.After(time.Second):
		t.Fatal("notification was never started")
	}
}

func TestSpinAlreadySpun(t *testing.T) {
	existing := testSpin()
	h := NewSpinHandler(&fakeSpinService{
		createErr: repositories.ErrDuplicatePhone,
		existing:  existing,
	}, &fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	w := postJSON(router, "/spin", `{"phone":"0912345678","campaign_id":"camp-1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["already_spun"] != true {
		t.Errorf("already_spun = %v", resp["already_spun"])
	}
	// The original coupon is echoed so the customer can recover it
	if resp["coupon_code"] != existing.CouponCode {
		t.Errorf("coupon_code = %v, want %s", resp["coupon_code"], existing.CouponCode)
	}
}

func TestSpinInvalidPhone(t *testing.T) {
	h := NewSpinHandler(&fakeSpinService{spin: testSpin()}, &fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	for _, body := range []string{
		`{"phone":"12345","campaign_id":"camp-1"}`,
		`{"phone":"0112345678","campaign_id":"camp-1"}`,
	} {
		w := postJSON(router, "/spin", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSpinMissingFields(t *testing.T) {
	h := NewSpinHandler(&fakeSpinService{spin: testSpin()}, &fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	for _, body := range []string{
		`{}`,
		`{"phone":"0912345678"}`,
		`{"campaign_id":"camp-1"}`,
		`not json`,
	} {
		w := postJSON(router, "/spin", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSpinNoPrizes(t *testing.T) {
	h := NewSpinHandler(&fakeSpinService{createErr: services.ErrNoPrizesConfigured},
		&fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	w := postJSON(router, "/spin", `{"phone":"0912345678","campaign_id":"camp-1"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestCheckEligibility(t *testing.T) {
	h := NewSpinHandler(&fakeSpinService{}, &fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	w := postJSON(router, "/check-eligibility", `{"phone":"0912345678","campaign_id":"camp-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["eligible"] != true {
		t.Errorf("eligible = %v", resp["eligible"])
	}
}

func TestCheckEligibilityAlreadySpun(t *testing.T) {
	h := NewSpinHandler(&fakeSpinService{existing: testSpin()},
		&fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	w := postJSON(router, "/check-eligibility", `{"phone":"0912345678","campaign_id":"camp-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["eligible"] != false || resp["already_spun"] != true {
		t.Errorf("unexpected response %v", resp)
	}
	// The eligibility check never reveals the coupon code
	if _, ok := resp["coupon_code"]; ok {
		t.Error("coupon_code must not appear in the eligibility response")
	}
}

func TestGetPrizes(t *testing.T) {
	h := NewSpinHandler(&fakeSpinService{prizes: []*models.PrizeConfig{
		{Value: 20000, Label: "20.000đ", Weight: 40, Active: true},
	}}, &fakeDiscountService{}, &fakeNotificationService{})
	router := newSpinRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/prizes/camp-1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success bool                  `json:"success"`
		Data    []*models.PrizeConfig `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if !resp.Success || len(resp.Data) != 1 || resp.Data[0].Value != 20000 {
		t.Errorf("unexpected response %+v", resp)
	}
}
