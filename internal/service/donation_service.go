package service

import (
	"errors"

	"giveflow/internal/domain"
	"giveflow/internal/models"

	"gorm.io/gorm"
)

// DonationStore is the slice of the donation repository the state machine
// needs.
type DonationStore interface {
	GetByID(id uint) (*models.Donation, error)
	ResetForRetry(id uint) (bool, error)
}

type DonationService struct {
	donations DonationStore
}

func NewDonationService(donations DonationStore) *DonationService {
	return &DonationService{donations: donations}
}

// Retry re-queues a failed donation for the requesting donor. The only legal
// transition here is FAILED -> PENDING; the conditional write in the store
// keeps two concurrent retries from both succeeding.
func (s *DonationService) Retry(donationID, requesterID uint) (*models.Donation, error) {
	d, err := s.donations.GetByID(donationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.DonorID != requesterID {
		return nil, ErrForbidden
	}
	if d.PaymentStatus != domain.DonationFailed {
		return nil, ErrInvalidState
	}
	ok, err := s.donations.ResetForRetry(donationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race to a concurrent transition
		return nil, ErrInvalidState
	}
	d.PaymentStatus = domain.DonationPending
	d.ProcessedAt = nil
	d.ProviderError = ""
	return d, nil
}
