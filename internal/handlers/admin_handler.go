package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
	"github.com/luckywheel-vn/luckywheel-backend/internal/models"
	"github.com/luckywheel-vn/luckywheel-backend/internal/services"
	"github.com/luckywheel-vn/luckywheel-backend/pkg/haravan"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminHandler handles the operator dashboard endpoints
type AdminHandler struct {
	spinService     services.SpinService
	discountService services.DiscountService
	cfg             *config.Config
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(spinService services.SpinService, discountService services.DiscountService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		spinService:     spinService,
		discountService: discountService,
		cfg:             cfg,
	}
}

func (h *AdminHandler) campaignID(c *gin.Context) string {
	if id := c.Query("campaign_id"); id != "" {
		return id
	}
	return h.cfg.Campaign.DefaultID
}

// ListSpins handles GET /admin/spins
func (h *AdminHandler) ListSpins(c *gin.Context) {
	spins, err := h.spinService.ListSpins(c.Request.Context(), h.campaignID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching spins",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": spins})
}

// GetStatistics handles GET /admin/statistics
func (h *AdminHandler) GetStatistics(c *gin.Context) {
	stats, err := h.spinService.GetStatistics(c.Request.Context(), h.campaignID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Error fetching statistics",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// UpdateSpinStatusRequest is the manual status override payload
type UpdateSpinStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateSpinStatus handles PUT /admin/spins/:id/status
func (h *AdminHandler) UpdateSpinStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid spin ID"})
		return
	}

	var req UpdateSpinStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidSpinStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid status. Must be: active, used, or expired",
		})
		return
	}

	spin, err := h.spinService.UpdateSpinStatus(c.Request.Context(), id, models.SpinStatus(req.Status))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Spin not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Update failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": spin})
}

// CreateDiscountRequest identifies the spin to provision a discount for
type CreateDiscountRequest struct {
	SpinID string `json:"spin_id" binding:"required"`
}

// CreateDiscount handles POST /admin/haravan/create-discount, the manual
// retry path for spins whose background discount creation failed
func (h *AdminHandler) CreateDiscount(c *gin.Context) {
	var req CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "spin_id is required"})
		return
	}

	id, err := primitive.ObjectIDFromHex(req.SpinID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid spin ID"})
		return
	}

	spin, err := h.spinService.GetSpinByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Spin not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	discount, err := h.discountService.CreateForSpin(c.Request.Context(), spin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDiscountAlreadyLinked):
			c.JSON(http.StatusBadRequest, gin.H{
				"success":     false,
				"message":     "Discount already created for this spin",
				"discount_id": spin.DiscountID,
			})
		case errors.Is(err, haravan.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Discount code already exists on the platform",
			})
		case errors.Is(err, haravan.ErrInvalidConfiguration):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"message": "Discount configuration rejected by the platform",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		}
		return
	}

	updated, err := h.spinService.GetSpinByID(c.Request.Context(), id)
	if err != nil {
		updated = spin
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     updated,
		"discount": discount,
	})
}

// DeleteDiscount handles DELETE /admin/haravan/discount/:spinId. Idempotent
// on the platform side; locally the spin ends up expired and unlinked.
func (h *AdminHandler) DeleteDiscount(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("spinId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid spin ID"})
		return
	}

	spin, err := h.spinService.GetSpinByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Spin not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.discountService.DeleteForSpin(c.Request.Context(), spin); err != nil {
		if errors.Is(err, services.ErrDiscountNotLinked) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No discount to delete"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Discount deleted successfully"})
}

// RefreshStatuses handles POST /admin/haravan/refresh-status
func (h *AdminHandler) RefreshStatuses(c *gin.Context) {
	report, err := h.discountService.RefreshStatuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": report.Updated,
		"results": report.Results,
		"errors":  report.Errors,
	})
}
