package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/repository"

	"github.com/gin-gonic/gin"
)

// PaymentCallback is the settlement payload from the payment provider.
type PaymentCallback struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	MerchantOrderID   string `json:"merchant_order_id"`
	OrderID           string `json:"order_id"`
	ReferenceOrderID  string `json:"reference_order_id"`
	Status            string `json:"status"`
	StatusCode        string `json:"status_code"`
	StatusDescription string `json:"status_description"`
	ReceiptNumber     string `json:"receipt_number"`
	TransactionUUID   string `json:"transaction_uuid"`
	TransactionDate   string `json:"transaction_date"`
}

// PaymentWebhookHandler consumes provider settlements: the external
// collaborator that moves donations PENDING -> COMPLETED/FAILED.
type PaymentWebhookHandler struct {
	donationRepo *repository.DonationRepository
	campaignRepo *repository.CampaignRepository
	charityRepo  *repository.CharityRepository
}

func NewPaymentWebhookHandler(
	donationRepo *repository.DonationRepository,
	campaignRepo *repository.CampaignRepository,
	charityRepo *repository.CharityRepository,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		charityRepo:  charityRepo,
	}
}

// Handle processes the settlement callback. The conditional PENDING-status
// update makes duplicate deliveries harmless.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[Payment callback] ReadBody error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	var payload PaymentCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Payment callback] json unmarshal error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	orderID := payload.MerchantOrderID
	if orderID == "" {
		orderID = payload.OrderID
	}
	if orderID == "" {
		orderID = payload.ReferenceOrderID
	}
	if orderID == "" {
		log.Printf("[Payment callback] no order_id in payload")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	d, err := h.donationRepo.GetByOrderID(orderID)
	if err != nil {
		log.Printf("[Payment callback] donation not found for order_id=%s", orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if d.PaymentStatus != domain.DonationPending {
		log.Printf("[Payment callback] donation %d already %s for order_id=%s", d.ID, d.PaymentStatus, orderID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if payload.Status == "COMPLETED" {
		providerRef := payload.TransactionUUID
		if providerRef == "" {
			providerRef = payload.ReceiptNumber
		}
		ok, err := h.donationRepo.MarkCompleted(d.ID, providerRef, time.Now())
		if err != nil {
			log.Printf("[Payment callback] mark completed failed: %v", err)
		}
		if ok {
			h.rollForward(d.ID)
		}
		log.Printf("[Payment callback] donation %d COMPLETED for order_id=%s", d.ID, orderID)
	} else {
		reason := payload.StatusDescription
		if reason == "" {
			reason = payload.Status
		}
		if _, err := h.donationRepo.MarkFailed(d.ID, reason); err != nil {
			log.Printf("[Payment callback] mark failed errored: %v", err)
		}
		log.Printf("[Payment callback] donation %d FAILED for order_id=%s: %s", d.ID, orderID, reason)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// rollForward updates the running totals a settled donation feeds: the
// campaign raised amount (stamping goal_reached_at when the goal is first
// met) and the effective charity's pending balance. Guarded by the
// conditional MarkCompleted, so it runs exactly once per donation.
func (h *PaymentWebhookHandler) rollForward(donationID uint) {
	d, err := h.donationRepo.GetByID(donationID)
	if err != nil {
		log.Printf("[Payment callback] reload donation %d: %v", donationID, err)
		return
	}
	charityID := d.CharityID
	if d.CampaignID != nil {
		cp, err := h.campaignRepo.GetByID(*d.CampaignID)
		if err != nil {
			log.Printf("[Payment callback] load campaign %d: %v", *d.CampaignID, err)
			return
		}
		if err := h.campaignRepo.AddRaised(cp.ID, d.AmountCents); err != nil {
			log.Printf("[Payment callback] add raised: %v", err)
		}
		if ok, err := h.campaignRepo.SetGoalReached(cp.ID, time.Now()); err != nil {
			log.Printf("[Payment callback] set goal reached: %v", err)
		} else if ok {
			log.Printf("[Payment callback] campaign %d reached its goal", cp.ID)
		}
		charityID = &cp.CharityID
	}
	if charityID != nil {
		if err := h.charityRepo.AddPending(*charityID, d.AmountCents); err != nil {
			log.Printf("[Payment callback] add pending: %v", err)
		}
	}
}
