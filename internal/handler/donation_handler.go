package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"giveflow/internal/domain"
	"giveflow/internal/middleware"
	"giveflow/internal/models"
	"giveflow/internal/repository"
	"giveflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DonationHandler struct {
	donationRepo *repository.DonationRepository
	campaignRepo *repository.CampaignRepository
	charityRepo  *repository.CharityRepository
	donationSvc  *service.DonationService
}

func NewDonationHandler(
	donationRepo *repository.DonationRepository,
	campaignRepo *repository.CampaignRepository,
	charityRepo *repository.CharityRepository,
	donationSvc *service.DonationService,
) *DonationHandler {
	return &DonationHandler{
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		charityRepo:  charityRepo,
		donationSvc:  donationSvc,
	}
}

// Create records a pending donation to exactly one of campaign/charity. The
// payment provider settles it later through the webhook.
func (h *DonationHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		CampaignID  *uint  `json:"campaign_id"`
		CharityID   *uint  `json:"charity_id"`
		AmountCents int64  `json:"amount_cents" binding:"required,min=1"`
		Currency    string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.CampaignID == nil) == (req.CharityID == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of campaign_id or charity_id is required"})
		return
	}
	currency := req.Currency
	if req.CampaignID != nil {
		cp, err := h.campaignRepo.GetByID(*req.CampaignID)
		if err != nil || cp.Status != domain.CampaignActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "campaign not found or not active"})
			return
		}
		if currency == "" {
			currency = cp.Currency
		}
	} else {
		ch, err := h.charityRepo.GetByID(*req.CharityID)
		if err != nil || !ch.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "charity not found or inactive"})
			return
		}
		if currency == "" {
			currency = ch.Currency
		}
	}
	d := &models.Donation{
		DonorID:       userID,
		CampaignID:    req.CampaignID,
		CharityID:     req.CharityID,
		AmountCents:   req.AmountCents,
		Currency:      currency,
		OrderID:       fmt.Sprintf("don-%s", uuid.New().String()),
		PaymentStatus: domain.DonationPending,
	}
	if err := h.donationRepo.Create(d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record donation"})
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DonationHandler) ListMine(c *gin.Context) {
	donations, err := h.donationRepo.ListByDonor(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list donations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"donations": donations})
}

// Retry re-queues the donor's failed donation for another payment attempt.
func (h *DonationHandler) Retry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}
	d, err := h.donationSvc.Retry(uint(id), middleware.GetUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "donation not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your donation"})
		case errors.Is(err, service.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only failed donations can be retried"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "retry failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"donation_id": d.ID, "payment_status": d.PaymentStatus})
}
