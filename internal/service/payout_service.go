package service

import (
	"context"
	"log"
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/models"
	"giveflow/pkg/payment"
)

// PayoutStore is the payout repository surface the processor and the retry
// coordinator share. Every transition is a conditional write on the expected
// prior status.
type PayoutStore interface {
	GetByID(id uint) (*models.Payout, error)
	ListByStatus(status string) ([]models.Payout, error)
	ListRetryable(maxRetries int, cutoff time.Time) ([]models.Payout, error)
	BeginProcessing(id uint) (bool, error)
	BeginRetry(id uint, maxRetries int) (bool, error)
	CompleteAndSettle(id uint, externalID string) (bool, error)
	MarkFailed(id uint, errMsg string, retryable bool, nextRetryAt time.Time) (bool, error)
	Escalate(id uint, errMsg string) (bool, error)
}

type PayoutResult struct {
	PayoutID         uint   `json:"payout_id"`
	Charity          string `json:"charity"`
	Success          bool   `json:"success"`
	AmountCents      int64  `json:"amount_cents"`
	DonationCount    int    `json:"donation_count"`
	ExternalPayoutID string `json:"external_payout_id,omitempty"`
	Error            string `json:"error,omitempty"`
	Escalated        bool   `json:"escalated,omitempty"`
}

type BatchReport struct {
	TotalProcessed   int            `json:"total_processed"`
	Successful       int            `json:"successful"`
	Failed           int            `json:"failed"`
	TotalAmountCents int64          `json:"total_amount_cents"`
	TotalDonations   int            `json:"total_donations"`
	Details          []PayoutResult `json:"details"`
}

func (r *BatchReport) add(res PayoutResult) {
	r.TotalProcessed++
	if res.Success {
		r.Successful++
		r.TotalAmountCents += res.AmountCents
		r.TotalDonations += res.DonationCount
	} else {
		r.Failed++
	}
	r.Details = append(r.Details, res)
}

// PayoutService executes settlement units against the transfer provider.
type PayoutService struct {
	store      PayoutStore
	provider   payment.TransferProvider
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
}

func NewPayoutService(store PayoutStore, provider payment.TransferProvider, maxRetries int, retryDelay time.Duration) *PayoutService {
	return &PayoutService{
		store:      store,
		provider:   provider,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		now:        time.Now,
	}
}

// ProcessPending attempts every PENDING payout, including ones left behind by
// a crashed earlier run. A failure on one charity never aborts the others.
func (s *PayoutService) ProcessPending(ctx context.Context) (*BatchReport, error) {
	pending, err := s.store.ListByStatus(domain.PayoutPending)
	if err != nil {
		return nil, err
	}
	report := &BatchReport{Details: []PayoutResult{}}
	for i := range pending {
		p := &pending[i]
		ok, err := s.store.BeginProcessing(p.ID)
		if err != nil {
			log.Printf("[Payout] %d begin failed: %v", p.ID, err)
			continue
		}
		if !ok {
			// another run owns this payout
			continue
		}
		report.add(s.Attempt(ctx, p))
	}
	return report, nil
}

// Attempt runs one provider transfer for a payout already flipped to
// PROCESSING by the caller. The payout's stored idempotency key is reused on
// every attempt, so a re-attempt after an unknown outcome cannot double-pay.
func (s *PayoutService) Attempt(ctx context.Context, p *models.Payout) PayoutResult {
	res := PayoutResult{
		PayoutID:      p.ID,
		Charity:       p.Charity.Name,
		AmountCents:   p.AmountCents,
		DonationCount: p.DonationCount,
	}
	resp, err := s.provider.SubmitTransfer(ctx, payment.TransferRequest{
		IdempotencyKey: p.IdempotencyKey,
		Reference:      p.Reference,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Account:        p.Charity.PayoutAccount,
		AccountName:    p.Charity.Name,
		Description:    "Donation payout " + p.Reference,
	})
	if err != nil {
		perr := payment.Classify(err)
		res.Error = perr.Message
		if p.RetryCount >= s.maxRetries {
			if _, err := s.store.Escalate(p.ID, perr.Message); err != nil {
				log.Printf("[Payout] %d escalate failed: %v", p.ID, err)
			}
			res.Escalated = true
			log.Printf("[Payout] %d escalated after %d attempts: %s", p.ID, p.RetryCount, perr.Message)
			return res
		}
		next := s.now().Add(s.retryDelay)
		if _, err := s.store.MarkFailed(p.ID, perr.Message, perr.Retryable, next); err != nil {
			log.Printf("[Payout] %d mark failed errored: %v", p.ID, err)
		}
		log.Printf("[Payout] %d failed (retryable=%t): %s", p.ID, perr.Retryable, perr.Message)
		return res
	}
	ok, err := s.store.CompleteAndSettle(p.ID, resp.TransferID)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if !ok {
		res.Error = "payout no longer processing"
		return res
	}
	res.Success = true
	res.ExternalPayoutID = resp.TransferID
	log.Printf("[Payout] %d completed transfer=%s amount=%d", p.ID, resp.TransferID, p.AmountCents)
	return res
}
