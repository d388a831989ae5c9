package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/models"
	"giveflow/internal/service"
	"giveflow/pkg/payment"

	"gorm.io/gorm"
)

// fakePayoutStore mirrors the conditional-write semantics of the real
// repository: every transition checks the expected prior status.
type fakePayoutStore struct {
	mu       sync.Mutex
	payouts  map[uint]*models.Payout
	settled  map[uint]int // payout id -> times CompleteAndSettle flipped it
	received map[uint]int64
}

func newFakePayoutStore(payouts ...*models.Payout) *fakePayoutStore {
	f := &fakePayoutStore{
		payouts:  map[uint]*models.Payout{},
		settled:  map[uint]int{},
		received: map[uint]int64{},
	}
	for _, p := range payouts {
		f.payouts[p.ID] = p
	}
	return f
}

func (f *fakePayoutStore) GetByID(id uint) (*models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *p
	return &copy, nil
}

func (f *fakePayoutStore) ListByStatus(status string) ([]models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payout
	for _, p := range f.payouts {
		if p.Status == status {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePayoutStore) ListRetryable(maxRetries int, cutoff time.Time) ([]models.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payout
	for _, p := range f.payouts {
		if p.Status == domain.PayoutFailed && p.Retryable && p.RetryCount < maxRetries &&
			p.LastAttemptAt != nil && !p.LastAttemptAt.After(cutoff) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePayoutStore) BeginProcessing(id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok || p.Status != domain.PayoutPending {
		return false, nil
	}
	now := time.Now()
	p.Status = domain.PayoutProcessing
	p.LastAttemptAt = &now
	return true, nil
}

func (f *fakePayoutStore) BeginRetry(id uint, maxRetries int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok || p.Status != domain.PayoutFailed || p.RetryCount >= maxRetries {
		return false, nil
	}
	now := time.Now()
	p.Status = domain.PayoutProcessing
	p.RetryCount++
	p.LastAttemptAt = &now
	return true, nil
}

func (f *fakePayoutStore) CompleteAndSettle(id uint, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.Status != domain.PayoutProcessing {
		return false, nil
	}
	p.Status = domain.PayoutCompleted
	p.ExternalPayoutID = externalID
	f.settled[id]++
	f.received[p.CharityID] += p.AmountCents
	return true, nil
}

func (f *fakePayoutStore) MarkFailed(id uint, errMsg string, retryable bool, nextRetryAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok || p.Status != domain.PayoutProcessing {
		return false, nil
	}
	p.Status = domain.PayoutFailed
	p.Retryable = retryable
	p.LastError = errMsg
	p.NextRetryAt = &nextRetryAt
	return true, nil
}

func (f *fakePayoutStore) Escalate(id uint, errMsg string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok || p.Status != domain.PayoutProcessing {
		return false, nil
	}
	p.Status = domain.PayoutEscalated
	p.LastError = errMsg
	return true, nil
}

// scriptedProvider fails specific payout references and succeeds otherwise.
type scriptedProvider struct {
	mu    sync.Mutex
	calls []payment.TransferRequest
	fail  map[string]error // keyed by reference
}

func (p *scriptedProvider) SubmitTransfer(ctx context.Context, req payment.TransferRequest) (*payment.TransferResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	if err, ok := p.fail[req.Reference]; ok && err != nil {
		return nil, err
	}
	return &payment.TransferResponse{TransferID: "tx-" + req.Reference, Status: "COMPLETED"}, nil
}

func pendingPayout(id, charityID uint, amount int64, count int) *models.Payout {
	return &models.Payout{
		ID:             id,
		CharityID:      charityID,
		Reference:      "po-" + strings.Repeat("0", int(id%10)) + "x",
		AmountCents:    amount,
		Currency:       "KES",
		DonationCount:  count,
		Status:         domain.PayoutPending,
		Retryable:      true,
		IdempotencyKey: "key-" + strings.Repeat("a", int(id%10)+1),
		Charity:        models.Charity{ID: charityID, Name: "Charity", PayoutAccount: "254700000001"},
	}
}

func TestProcessPendingSuccess(t *testing.T) {
	p := pendingPayout(1, 5, 15000, 3)
	store := newFakePayoutStore(p)
	provider := &scriptedProvider{}
	svc := service.NewPayoutService(store, provider, 3, time.Hour)

	report, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if report.TotalProcessed != 1 || report.Successful != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.TotalAmountCents != 15000 || report.TotalDonations != 3 {
		t.Errorf("totals = %d/%d, want 15000/3", report.TotalAmountCents, report.TotalDonations)
	}
	if store.payouts[1].Status != domain.PayoutCompleted {
		t.Errorf("status = %s, want COMPLETED", store.payouts[1].Status)
	}
	if store.settled[1] != 1 {
		t.Errorf("settled %d times, want exactly once", store.settled[1])
	}
	if store.received[5] != 15000 {
		t.Errorf("charity received %d, want 15000", store.received[5])
	}
	if len(provider.calls) != 1 || provider.calls[0].IdempotencyKey != p.IdempotencyKey {
		t.Errorf("provider calls = %+v", provider.calls)
	}
}

func TestProcessPendingTransientFailure(t *testing.T) {
	p := pendingPayout(1, 5, 15000, 3)
	store := newFakePayoutStore(p)
	provider := &scriptedProvider{fail: map[string]error{
		p.Reference: &payment.ProviderError{Code: "503", Message: "upstream unavailable", Retryable: true},
	}}
	svc := service.NewPayoutService(store, provider, 3, time.Hour)

	report, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if report.Failed != 1 || report.Successful != 0 {
		t.Fatalf("report = %+v", report)
	}
	got := store.payouts[1]
	if got.Status != domain.PayoutFailed || !got.Retryable {
		t.Errorf("status=%s retryable=%t, want FAILED retryable", got.Status, got.Retryable)
	}
	if got.NextRetryAt == nil {
		t.Fatalf("next_retry_at not set")
	}
	wantNext := time.Now().Add(time.Hour)
	if diff := got.NextRetryAt.Sub(wantNext); diff < -time.Minute || diff > time.Minute {
		t.Errorf("next_retry_at = %v, want ~%v", got.NextRetryAt, wantNext)
	}
	if store.settled[1] != 0 {
		t.Errorf("failed payout settled charity totals")
	}
}

func TestProcessPendingPermanentFailure(t *testing.T) {
	p := pendingPayout(1, 5, 15000, 3)
	store := newFakePayoutStore(p)
	provider := &scriptedProvider{fail: map[string]error{
		p.Reference: &payment.ProviderError{Code: "400", Message: "invalid destination account", Retryable: false},
	}}
	svc := service.NewPayoutService(store, provider, 3, time.Hour)

	if _, err := svc.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	got := store.payouts[1]
	if got.Status != domain.PayoutFailed || got.Retryable {
		t.Errorf("status=%s retryable=%t, want FAILED non-retryable", got.Status, got.Retryable)
	}
}

func TestProcessPendingTimeoutStaysRetryable(t *testing.T) {
	p := pendingPayout(1, 5, 15000, 3)
	store := newFakePayoutStore(p)
	provider := &scriptedProvider{fail: map[string]error{
		p.Reference: context.DeadlineExceeded,
	}}
	svc := service.NewPayoutService(store, provider, 3, time.Hour)

	if _, err := svc.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	got := store.payouts[1]
	if got.Status != domain.PayoutFailed || !got.Retryable {
		t.Errorf("timeout outcome: status=%s retryable=%t, want FAILED retryable", got.Status, got.Retryable)
	}
	if got.ExternalPayoutID != "" {
		t.Errorf("timeout marked completed speculatively")
	}
}

func TestProcessPendingSiblingIsolation(t *testing.T) {
	p1 := pendingPayout(1, 5, 10000, 2)
	p2 := pendingPayout(2, 6, 20000, 4)
	p3 := pendingPayout(3, 7, 30000, 6)
	store := newFakePayoutStore(p1, p2, p3)
	provider := &scriptedProvider{fail: map[string]error{
		p2.Reference: &payment.ProviderError{Code: "500", Message: "boom", Retryable: true},
	}}
	svc := service.NewPayoutService(store, provider, 3, time.Hour)

	report, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if report.TotalProcessed != 3 || report.Successful != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if store.payouts[1].Status != domain.PayoutCompleted || store.payouts[3].Status != domain.PayoutCompleted {
		t.Errorf("sibling failure aborted healthy payouts")
	}
	if store.payouts[2].Status != domain.PayoutFailed {
		t.Errorf("payout 2 status = %s, want FAILED", store.payouts[2].Status)
	}
}

func TestProcessPendingSkipsClaimedPayout(t *testing.T) {
	p := pendingPayout(1, 5, 15000, 3)
	p.Status = domain.PayoutProcessing // another run owns it
	store := newFakePayoutStore(p)
	provider := &scriptedProvider{}
	svc := service.NewPayoutService(store, provider, 3, time.Hour)

	report, err := svc.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if report.TotalProcessed != 0 {
		t.Fatalf("processed a payout owned by another run: %+v", report)
	}
	if len(provider.calls) != 0 {
		t.Errorf("provider called for a claimed payout")
	}
}
