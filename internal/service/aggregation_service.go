package service

import (
	"log"

	"giveflow/internal/domain"
	"giveflow/internal/models"

	"github.com/google/uuid"
)

type CharityBalanceStore interface {
	EligibleBalances(minCents int64) ([]models.CharityBalance, error)
}

type SettlementStore interface {
	UnsettledByCharity(charityID uint) ([]models.Donation, error)
}

type PayoutClaimStore interface {
	CreateClaiming(p *models.Payout, donationIDs []uint) (bool, error)
}

// AggregationService groups settled, unpaid donations into payout batches.
// Each eligible charity gets one new PENDING payout claiming the exact
// donation set observed at snapshot time; donations arriving later wait for
// the next run.
type AggregationService struct {
	charities      CharityBalanceStore
	donations      SettlementStore
	payouts        PayoutClaimStore
	minPayoutCents int64
	currency       string
}

func NewAggregationService(charities CharityBalanceStore, donations SettlementStore, payouts PayoutClaimStore, minPayoutCents int64, currency string) *AggregationService {
	return &AggregationService{
		charities:      charities,
		donations:      donations,
		payouts:        payouts,
		minPayoutCents: minPayoutCents,
		currency:       currency,
	}
}

// Aggregate creates payouts for every charity at or above the threshold and
// returns them. Charities are processed in id order; a charity whose
// donations were claimed by a concurrent run is skipped without affecting the
// others.
func (s *AggregationService) Aggregate() ([]models.Payout, error) {
	balances, err := s.charities.EligibleBalances(s.minPayoutCents)
	if err != nil {
		return nil, err
	}
	var created []models.Payout
	for _, b := range balances {
		snapshot, err := s.donations.UnsettledByCharity(b.CharityID)
		if err != nil {
			log.Printf("[Aggregation] charity=%d snapshot failed: %v", b.CharityID, err)
			continue
		}
		var sum int64
		ids := make([]uint, 0, len(snapshot))
		for _, d := range snapshot {
			sum += d.AmountCents
			ids = append(ids, d.ID)
		}
		// the balance can have shrunk since the eligibility query
		if sum < s.minPayoutCents {
			continue
		}
		p := models.Payout{
			CharityID:      b.CharityID,
			Reference:      "po-" + uuid.New().String(),
			AmountCents:    sum,
			Currency:       s.currency,
			DonationCount:  len(ids),
			Status:         domain.PayoutPending,
			Retryable:      true,
			IdempotencyKey: uuid.New().String(),
		}
		ok, err := s.payouts.CreateClaiming(&p, ids)
		if err != nil {
			log.Printf("[Aggregation] charity=%d claim failed: %v", b.CharityID, err)
			continue
		}
		if !ok {
			log.Printf("[Aggregation] charity=%d claimed by concurrent run, skipping", b.CharityID)
			continue
		}
		log.Printf("[Aggregation] payout %s charity=%d amount=%d donations=%d", p.Reference, b.CharityID, sum, len(ids))
		created = append(created, p)
	}
	return created, nil
}
