package handler

import (
	"errors"
	"net/http"
	"strconv"

	"giveflow/internal/models"
	"giveflow/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CharityHandler struct {
	charityRepo *repository.CharityRepository
}

func NewCharityHandler(charityRepo *repository.CharityRepository) *CharityHandler {
	return &CharityHandler{charityRepo: charityRepo}
}

func (h *CharityHandler) List(c *gin.Context) {
	charities, err := h.charityRepo.ListActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list charities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"charities": charities})
}

func (h *CharityHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid charity id"})
		return
	}
	ch, err := h.charityRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "charity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load charity"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Create registers a charity with its payout destination. Admin only.
func (h *CharityHandler) Create(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		Description   string `json:"description"`
		PayoutAccount string `json:"payout_account" binding:"required"`
		Currency      string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch := &models.Charity{
		Name:          req.Name,
		Description:   req.Description,
		PayoutAccount: req.PayoutAccount,
		Currency:      req.Currency,
		IsActive:      true,
	}
	if ch.Currency == "" {
		ch.Currency = "KES"
	}
	if err := h.charityRepo.Create(ch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create charity"})
		return
	}
	c.JSON(http.StatusCreated, ch)
}
