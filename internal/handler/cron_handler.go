package handler

import (
	"fmt"
	"net/http"
	"time"

	"giveflow/internal/models"
	"giveflow/internal/repository"
	"giveflow/internal/service"

	"github.com/gin-gonic/gin"
)

// CronHandler runs the scheduler-triggered financial jobs. Authorization and
// the kill switch live in the CronGate middleware; by the time these run the
// trigger is already cleared to proceed.
type CronHandler struct {
	lifecycleSvc *service.LifecycleService
	aggSvc       *service.AggregationService
	payoutSvc    *service.PayoutService
	auditRepo    *repository.AuditLogRepository
}

func NewCronHandler(
	lifecycleSvc *service.LifecycleService,
	aggSvc *service.AggregationService,
	payoutSvc *service.PayoutService,
	auditRepo *repository.AuditLogRepository,
) *CronHandler {
	return &CronHandler{
		lifecycleSvc: lifecycleSvc,
		aggSvc:       aggSvc,
		payoutSvc:    payoutSvc,
		auditRepo:    auditRepo,
	}
}

// CampaignLifecycle auto-closes goal-reached campaigns past the grace window
// and expires campaigns past their deadline.
func (h *CronHandler) CampaignLifecycle(c *gin.Context) {
	res, err := h.lifecycleSvc.Run()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lifecycle run failed"})
		return
	}
	h.audit(c, "cron.campaign_lifecycle", "campaign", fmt.Sprintf("auto_closed=%d expired=%d", res.AutoClosed, res.Expired))
	c.JSON(http.StatusOK, gin.H{
		"auto_closed_count": res.AutoClosed,
		"expired_count":     res.Expired,
		"duration_ms":       res.Duration.Milliseconds(),
	})
}

// CharityPayouts aggregates eligible charities into payout batches and
// disburses them.
func (h *CronHandler) CharityPayouts(c *gin.Context) {
	start := time.Now()
	created, err := h.aggSvc.Aggregate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	report, err := h.payoutSvc.ProcessPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payout batch failed"})
		return
	}
	h.audit(c, "cron.charity_payouts", "payout",
		fmt.Sprintf("created=%d processed=%d successful=%d failed=%d amount=%d",
			len(created), report.TotalProcessed, report.Successful, report.Failed, report.TotalAmountCents))
	c.JSON(http.StatusOK, gin.H{
		"created":            len(created),
		"total_processed":    report.TotalProcessed,
		"successful":         report.Successful,
		"failed":             report.Failed,
		"total_amount_cents": report.TotalAmountCents,
		"total_donations":    report.TotalDonations,
		"details":            report.Details,
		"duration_ms":        time.Since(start).Milliseconds(),
	})
}

func (h *CronHandler) audit(c *gin.Context, action, resource, metadata string) {
	_ = h.auditRepo.Create(&models.AuditLog{
		Action:   action,
		Resource: resource,
		IP:       c.ClientIP(),
		Metadata: metadata,
	})
}
