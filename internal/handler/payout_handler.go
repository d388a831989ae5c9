package handler

import (
	"errors"
	"fmt"
	"net/http"

	"giveflow/internal/domain"
	"giveflow/internal/middleware"
	"giveflow/internal/models"
	"giveflow/internal/repository"
	"giveflow/internal/service"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	payoutRepo *repository.PayoutRepository
	retrySvc   *service.RetryService
	auditRepo  *repository.AuditLogRepository
}

func NewPayoutHandler(
	payoutRepo *repository.PayoutRepository,
	retrySvc *service.RetryService,
	auditRepo *repository.AuditLogRepository,
) *PayoutHandler {
	return &PayoutHandler{payoutRepo: payoutRepo, retrySvc: retrySvc, auditRepo: auditRepo}
}

// Retry serves both callers of the retry coordinator: the scheduler
// (auto=true, bearer cron secret) re-attempts every eligible failed payout;
// an admin retries one payout by id, skipping the delay window.
func (h *PayoutHandler) Retry(c *gin.Context) {
	var req struct {
		PayoutID uint   `json:"payout_id"`
		Type     string `json:"type"`
		Auto     bool   `json:"auto"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Auto {
		if !middleware.IsCronCaller(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		report, err := h.retrySvc.RetryFailed(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "retry run failed"})
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}
	userID := middleware.GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	if req.PayoutID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payout_id is required"})
		return
	}
	res, err := h.retrySvc.RetryOne(c.Request.Context(), req.PayoutID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "payout not found"})
		case errors.Is(err, service.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": "payout is not retryable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "retry failed"})
		}
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &userID,
		Action:     "payout.manual_retry",
		Resource:   "payout",
		ResourceID: fmt.Sprintf("%d", req.PayoutID),
		IP:         c.ClientIP(),
		Metadata:   fmt.Sprintf("success=%t error=%s", res.Success, res.Error),
	})
	c.JSON(http.StatusOK, res)
}

// List returns payouts for the admin audit surface, optionally filtered by
// status.
func (h *PayoutHandler) List(c *gin.Context) {
	status := c.Query("status")
	var (
		payouts []models.Payout
		err     error
	)
	if status != "" {
		payouts, err = h.payoutRepo.ListByStatus(status)
	} else {
		payouts, err = h.payoutRepo.ListAll()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list payouts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}
