package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luckywheel-vn/luckywheel-backend/internal/repositories"
	"github.com/luckywheel-vn/luckywheel-backend/internal/services"
	"github.com/luckywheel-vn/luckywheel-backend/internal/utils"
	"golang.org/x/exp/slog"
)

// Budget for the fire-and-forget work that runs after the spin response
// has already been returned to the client
const asyncTimeout = 25 * time.Second

// SpinHandler handles the customer-facing spin endpoints
type SpinHandler struct {
	spinService     services.SpinService
	discountService services.DiscountService
	notifyService   services.NotificationService
}

// NewSpinHandler creates a new SpinHandler
func NewSpinHandler(spinService services.SpinService, discountService services.DiscountService, notifyService services.NotificationService) *SpinHandler {
	return &SpinHandler{
		spinService:     spinService,
		discountService: discountService,
		notifyService:   notifyService,
	}
}

// CheckEligibilityRequest is the advisory duplicate-check payload
type CheckEligibilityRequest struct {
	Phone      string `json:"phone"`
	CampaignID string `json:"campaign_id"`
}

// CheckEligibility handles POST /check-eligibility. Advisory only: an
// eligible answer does not reserve the phone.
func (h *SpinHandler) CheckEligibility(c *gin.Context) {
	var req CheckEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.CampaignID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Missing required fields: phone, campaign_id",
		})
		return
	}

	phone := utils.NormalizePhone(req.Phone)
	if !utils.ValidatePhone(phone) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid phone number format",
		})
		return
	}

	existing, err := h.spinService.CheckEligibility(c.Request.Context(), req.CampaignID, phone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Unable to check eligibility. Please try again.",
		})
		return
	}

	if existing != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":      false,
			"eligible":     false,
			"message":      "This phone number has already spun. Please check your messages for the coupon.",
			"already_spun": true,
			"spun_at":      existing.CreatedAt,
			"prize":        existing.Prize,
			"expires_at":   existing.ExpiresAt,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"eligible": true,
		"message":  "You can spin",
	})
}

// SpinRequest is the spin attempt payload
type SpinRequest struct {
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	CampaignID string `json:"campaign_id"`
}

// Spin handles POST /spin. On success the response is returned immediately;
// external discount provisioning and the webhook notification run in the
// background and never block or fail the spin.
func (h *SpinHandler) Spin(c *gin.Context) {
	var req SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.CampaignID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Missing required fields",
		})
		return
	}

	phone := utils.NormalizePhone(req.Phone)
	if !utils.ValidatePhone(phone) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid phone number format",
		})
		return
	}

	spin, err := h.spinService.CreateSpin(c.Request.Context(), services.CreateSpinInput{
		CampaignID:   req.CampaignID,
		Phone:        phone,
		CustomerName: req.Name,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.GetHeader("User-Agent"),
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicatePhone):
			// Authoritative rejection; echo the original spin back
			existing, lookupErr := h.spinService.CheckEligibility(c.Request.Context(), req.CampaignID, phone)
			if lookupErr != nil || existing == nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success":      false,
					"message":      "This phone number has already spun",
					"already_spun": true,
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"success":      false,
				"message":      "This phone number has already spun. Please check your messages for the coupon.",
				"already_spun": true,
				"spun_at":      existing.CreatedAt,
				"prize":        existing.Prize,
				"coupon_code":  existing.CouponCode,
				"expires_at":   existing.ExpiresAt,
			})
		case errors.Is(err, services.ErrNoPrizesConfigured):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"message": "No prizes configured for this campaign",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"message":    "Something went wrong. Please try again later.",
				"error_code": "INTERNAL_ERROR",
			})
		}
		return
	}

	// Fire-and-forget: provision the external discount and notify the
	// automation. Both record their own outcome on the spin row.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if _, err := h.discountService.CreateForSpin(ctx, spin); err != nil {
			slog.Warn("background discount creation failed", "error", err, "spinId", spin.ID.Hex())
		}
	}()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if err := h.notifyService.NotifySpin(ctx, spin); err != nil {
			slog.Warn("background notification failed", "error", err, "spinId", spin.ID.Hex())
		}
	}()

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Your coupon will be delivered in a few seconds",
		"code":         spin.CouponCode,
		"prize":        spin.Prize,
		"phone_masked": spin.PhoneMasked,
		"expires_at":   spin.ExpiresAt,
	})
}

// GetPrizes handles GET /prizes/:campaignId, the wheel's segment list
func (h *SpinHandler) GetPrizes(c *gin.Context) {
	prizes, err := h.spinService.GetActivePrizes(c.Request.Context(), c.Param("campaignId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching prizes",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    prizes,
	})
}
