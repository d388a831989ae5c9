package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/middleware"
	"giveflow/internal/models"
	"giveflow/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignRepo *repository.CampaignRepository
	charityRepo  *repository.CharityRepository
}

func NewCampaignHandler(campaignRepo *repository.CampaignRepository, charityRepo *repository.CharityRepository) *CampaignHandler {
	return &CampaignHandler{campaignRepo: campaignRepo, charityRepo: charityRepo}
}

func (h *CampaignHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		CharityID       uint   `json:"charity_id" binding:"required"`
		Title           string `json:"title" binding:"required"`
		Description     string `json:"description"`
		GoalAmountCents int64  `json:"goal_amount_cents" binding:"required,min=1"`
		Currency        string `json:"currency"`
		ExpiresAt       string `json:"expires_at" binding:"required"` // RFC 3339
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expiresAt, err := time.Parse(time.RFC3339, req.ExpiresAt)
	if err != nil || !expiresAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be a future RFC 3339 timestamp"})
		return
	}
	charity, err := h.charityRepo.GetByID(req.CharityID)
	if err != nil || !charity.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "charity not found or inactive"})
		return
	}
	cp := &models.Campaign{
		CharityID:       req.CharityID,
		OwnerID:         userID,
		Title:           req.Title,
		Description:     req.Description,
		GoalAmountCents: req.GoalAmountCents,
		Currency:        req.Currency,
		Status:          domain.CampaignActive,
		ExpiresAt:       expiresAt,
	}
	if cp.Currency == "" {
		cp.Currency = charity.Currency
	}
	if err := h.campaignRepo.Create(cp); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create campaign"})
		return
	}
	c.JSON(http.StatusCreated, cp)
}

func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, err := h.campaignRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list campaigns"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *CampaignHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}
	cp, err := h.campaignRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load campaign"})
		return
	}
	c.JSON(http.StatusOK, cp)
}

// Complete ends an active campaign early. Owner or admin only.
func (h *CampaignHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}
	cp, err := h.campaignRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load campaign"})
		return
	}
	if cp.OwnerID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not campaign owner"})
		return
	}
	ok, err := h.campaignRepo.Complete(cp.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete campaign"})
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign is not active"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign_id": cp.ID, "status": domain.CampaignCompleted})
}
