package service_test

import (
	"testing"

	"giveflow/internal/domain"
	"giveflow/internal/models"
	"giveflow/internal/service"
)

type fakeBalanceStore struct {
	balances []models.CharityBalance
}

func (f *fakeBalanceStore) EligibleBalances(minCents int64) ([]models.CharityBalance, error) {
	var out []models.CharityBalance
	for _, b := range f.balances {
		if b.PendingCents >= minCents {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeSettlementStore struct {
	byCharity map[uint][]models.Donation
}

func (f *fakeSettlementStore) UnsettledByCharity(charityID uint) ([]models.Donation, error) {
	return f.byCharity[charityID], nil
}

type fakeClaimStore struct {
	nextID   uint
	created  []models.Payout
	claimed  map[uint][]uint // payout id -> donation ids
	conflict map[uint]bool   // charity id -> simulate concurrent claim
}

func (f *fakeClaimStore) CreateClaiming(p *models.Payout, donationIDs []uint) (bool, error) {
	if f.conflict[p.CharityID] {
		return false, nil
	}
	f.nextID++
	p.ID = f.nextID
	if f.claimed == nil {
		f.claimed = map[uint][]uint{}
	}
	f.claimed[p.ID] = donationIDs
	f.created = append(f.created, *p)
	return true, nil
}

func donationsOf(ids []uint, charityID uint, amounts ...int64) []models.Donation {
	out := make([]models.Donation, len(ids))
	for i := range ids {
		ch := charityID
		out[i] = models.Donation{ID: ids[i], CharityID: &ch, AmountCents: amounts[i], PaymentStatus: domain.DonationCompleted}
	}
	return out
}

func TestAggregateCreatesOnePayoutPerEligibleCharity(t *testing.T) {
	balances := &fakeBalanceStore{balances: []models.CharityBalance{
		{CharityID: 1, Name: "A", PendingCents: 15000, DonationCount: 3},
		{CharityID: 2, Name: "B", PendingCents: 5000, DonationCount: 1},
	}}
	settlements := &fakeSettlementStore{byCharity: map[uint][]models.Donation{
		1: donationsOf([]uint{11, 12, 13}, 1, 5000, 5000, 5000),
		2: donationsOf([]uint{21}, 2, 5000),
	}}
	claims := &fakeClaimStore{}
	svc := service.NewAggregationService(balances, settlements, claims, 10000, "KES")

	created, err := svc.Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d payouts, want 1", len(created))
	}
	p := created[0]
	if p.CharityID != 1 || p.AmountCents != 15000 || p.DonationCount != 3 {
		t.Errorf("payout = %+v", p)
	}
	if p.Status != domain.PayoutPending {
		t.Errorf("status = %s, want PENDING", p.Status)
	}
	if p.Reference == "" || p.IdempotencyKey == "" {
		t.Errorf("missing reference or idempotency key: %+v", p)
	}
	if got := claims.claimed[p.ID]; len(got) != 3 || got[0] != 11 || got[2] != 13 {
		t.Errorf("claimed donation ids = %v", got)
	}
}

// The snapshot is the authority: if the balance shrank between the
// eligibility query and the snapshot, no payout is created below threshold.
func TestAggregateSkipsWhenSnapshotBelowThreshold(t *testing.T) {
	balances := &fakeBalanceStore{balances: []models.CharityBalance{
		{CharityID: 1, Name: "A", PendingCents: 15000, DonationCount: 3},
	}}
	settlements := &fakeSettlementStore{byCharity: map[uint][]models.Donation{
		1: donationsOf([]uint{11}, 1, 5000),
	}}
	claims := &fakeClaimStore{}
	svc := service.NewAggregationService(balances, settlements, claims, 10000, "KES")

	created, err := svc.Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("created %d payouts, want 0", len(created))
	}
}

// A charity whose donations were claimed by a concurrent run is skipped; the
// rest of the batch proceeds.
func TestAggregateClaimConflictSkipsCharityOnly(t *testing.T) {
	balances := &fakeBalanceStore{balances: []models.CharityBalance{
		{CharityID: 1, Name: "A", PendingCents: 15000, DonationCount: 3},
		{CharityID: 2, Name: "B", PendingCents: 20000, DonationCount: 2},
	}}
	settlements := &fakeSettlementStore{byCharity: map[uint][]models.Donation{
		1: donationsOf([]uint{11, 12, 13}, 1, 5000, 5000, 5000),
		2: donationsOf([]uint{21, 22}, 2, 10000, 10000),
	}}
	claims := &fakeClaimStore{conflict: map[uint]bool{1: true}}
	svc := service.NewAggregationService(balances, settlements, claims, 10000, "KES")

	created, err := svc.Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(created) != 1 || created[0].CharityID != 2 {
		t.Fatalf("created = %+v, want only charity 2", created)
	}
}

func TestAggregateEmptyWhenNothingEligible(t *testing.T) {
	svc := service.NewAggregationService(
		&fakeBalanceStore{},
		&fakeSettlementStore{},
		&fakeClaimStore{},
		10000, "KES",
	)
	created, err := svc.Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("created = %+v, want none", created)
	}
}
