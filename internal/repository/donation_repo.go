package repository

import (
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/models"

	"gorm.io/gorm"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Create(d *models.Donation) error {
	return r.db.Create(d).Error
}

func (r *DonationRepository) GetByID(id uint) (*models.Donation, error) {
	var d models.Donation
	err := r.db.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetByOrderID(orderID string) (*models.Donation, error) {
	var d models.Donation
	err := r.db.Where("order_id = ?", orderID).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) ListByDonor(donorID uint) ([]models.Donation, error) {
	var out []models.Donation
	err := r.db.Where("donor_id = ?", donorID).Order("id DESC").Find(&out).Error
	return out, err
}

// MarkCompleted settles a pending donation with provider metadata. The status
// condition makes duplicate webhook deliveries a no-op.
func (r *DonationRepository) MarkCompleted(id uint, providerRef string, at time.Time) (bool, error) {
	res := r.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", id, domain.DonationPending).
		Updates(map[string]interface{}{
			"payment_status":     domain.DonationCompleted,
			"provider_reference": providerRef,
			"processed_at":       at,
		})
	return res.RowsAffected == 1, res.Error
}

// MarkFailed records a provider failure on a pending donation.
func (r *DonationRepository) MarkFailed(id uint, providerErr string) (bool, error) {
	res := r.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", id, domain.DonationPending).
		Updates(map[string]interface{}{
			"payment_status": domain.DonationFailed,
			"provider_error": providerErr,
		})
	return res.RowsAffected == 1, res.Error
}

// ResetForRetry re-queues a failed donation. Conditional on the current
// status, so two concurrent retry calls cannot both succeed.
func (r *DonationRepository) ResetForRetry(id uint) (bool, error) {
	res := r.db.Model(&models.Donation{}).
		Where("id = ? AND payment_status = ?", id, domain.DonationFailed).
		Updates(map[string]interface{}{
			"payment_status": domain.DonationPending,
			"processed_at":   nil,
			"provider_error": "",
		})
	return res.RowsAffected == 1, res.Error
}

// UnsettledByCharity returns the completed donations not yet claimed by any
// payout whose effective beneficiary is the given charity (directly, or via
// the campaign's owning charity), ordered by id.
func (r *DonationRepository) UnsettledByCharity(charityID uint) ([]models.Donation, error) {
	var out []models.Donation
	err := r.db.Raw(`
		SELECT d.* FROM donations d
		LEFT JOIN campaigns cp ON cp.id = d.campaign_id AND cp.deleted_at IS NULL
		WHERE d.payment_status = ? AND d.payout_id IS NULL AND d.deleted_at IS NULL
		  AND COALESCE(d.charity_id, cp.charity_id) = ?
		ORDER BY d.id`, domain.DonationCompleted, charityID).Scan(&out).Error
	return out, err
}
