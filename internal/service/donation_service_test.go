package service_test

import (
	"errors"
	"testing"
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/models"
	"giveflow/internal/service"

	"gorm.io/gorm"
)

type fakeDonationStore struct {
	donations map[uint]*models.Donation
	resets    int
}

func (f *fakeDonationStore) GetByID(id uint) (*models.Donation, error) {
	d, ok := f.donations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *d
	return &copy, nil
}

func (f *fakeDonationStore) ResetForRetry(id uint) (bool, error) {
	d, ok := f.donations[id]
	if !ok || d.PaymentStatus != domain.DonationFailed {
		return false, nil
	}
	d.PaymentStatus = domain.DonationPending
	d.ProcessedAt = nil
	d.ProviderError = ""
	f.resets++
	return true, nil
}

func TestDonationRetry(t *testing.T) {
	now := time.Now()
	store := &fakeDonationStore{donations: map[uint]*models.Donation{
		1: {ID: 1, DonorID: 10, PaymentStatus: domain.DonationFailed, ProcessedAt: &now, ProviderError: "insufficient funds"},
		2: {ID: 2, DonorID: 10, PaymentStatus: domain.DonationPending},
		3: {ID: 3, DonorID: 10, PaymentStatus: domain.DonationCompleted},
	}}
	svc := service.NewDonationService(store)

	d, err := svc.Retry(1, 10)
	if err != nil {
		t.Fatalf("retry failed donation: %v", err)
	}
	if d.PaymentStatus != domain.DonationPending {
		t.Errorf("status = %s, want %s", d.PaymentStatus, domain.DonationPending)
	}
	if d.ProcessedAt != nil {
		t.Errorf("processed_at not cleared")
	}
	if store.donations[1].PaymentStatus != domain.DonationPending {
		t.Errorf("store status = %s, want %s", store.donations[1].PaymentStatus, domain.DonationPending)
	}
}

func TestDonationRetryNotFound(t *testing.T) {
	svc := service.NewDonationService(&fakeDonationStore{donations: map[uint]*models.Donation{}})
	if _, err := svc.Retry(99, 10); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDonationRetryWrongOwner(t *testing.T) {
	store := &fakeDonationStore{donations: map[uint]*models.Donation{
		1: {ID: 1, DonorID: 10, PaymentStatus: domain.DonationFailed},
	}}
	svc := service.NewDonationService(store)
	if _, err := svc.Retry(1, 11); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.donations[1].PaymentStatus != domain.DonationFailed {
		t.Errorf("donation mutated by forbidden retry")
	}
}

func TestDonationRetryInvalidState(t *testing.T) {
	store := &fakeDonationStore{donations: map[uint]*models.Donation{
		2: {ID: 2, DonorID: 10, PaymentStatus: domain.DonationPending},
		3: {ID: 3, DonorID: 10, PaymentStatus: domain.DonationCompleted},
	}}
	svc := service.NewDonationService(store)
	for _, id := range []uint{2, 3} {
		if _, err := svc.Retry(id, 10); !errors.Is(err, service.ErrInvalidState) {
			t.Errorf("donation %d: err = %v, want ErrInvalidState", id, err)
		}
	}
	if store.resets != 0 {
		t.Errorf("resets = %d, want 0", store.resets)
	}
}
