package repository

import (
	"errors"
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/models"

	"gorm.io/gorm"
)

var errClaimConflict = errors.New("donations claimed by a concurrent run")

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) GetByID(id uint) (*models.Payout, error) {
	var p models.Payout
	err := r.db.Preload("Charity").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) ListByStatus(status string) ([]models.Payout, error) {
	var out []models.Payout
	err := r.db.Preload("Charity").Where("status = ?", status).Order("id").Find(&out).Error
	return out, err
}

func (r *PayoutRepository) ListAll() ([]models.Payout, error) {
	var out []models.Payout
	err := r.db.Preload("Charity").Order("id DESC").Find(&out).Error
	return out, err
}

// ListRetryable returns failed payouts eligible for an automatic re-attempt:
// still flagged retryable, under the retry budget, and last attempted at or
// before cutoff.
func (r *PayoutRepository) ListRetryable(maxRetries int, cutoff time.Time) ([]models.Payout, error) {
	var out []models.Payout
	err := r.db.Preload("Charity").
		Where("status = ? AND retryable = ? AND retry_count < ? AND last_attempt_at <= ?",
			domain.PayoutFailed, true, maxRetries, cutoff).
		Order("id").Find(&out).Error
	return out, err
}

// CreateClaiming inserts the payout and claims its donation set in one
// transaction. If any donation was claimed by a concurrent run in the
// meantime, the whole transaction rolls back and (false, nil) is returned —
// no partial payout survives.
func (r *PayoutRepository) CreateClaiming(p *models.Payout, donationIDs []uint) (bool, error) {
	if len(donationIDs) == 0 {
		return false, nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Donation{}).
			Where("id IN ? AND payout_id IS NULL AND payment_status = ?", donationIDs, domain.DonationCompleted).
			Update("payout_id", p.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(donationIDs)) {
			return errClaimConflict
		}
		return nil
	})
	if errors.Is(err, errClaimConflict) {
		return false, nil
	}
	return err == nil, err
}

// BeginProcessing claims a pending payout for one attempt. Exactly one caller
// wins the conditional flip; everyone else sees zero rows affected.
func (r *PayoutRepository) BeginProcessing(id uint) (bool, error) {
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, domain.PayoutPending).
		Updates(map[string]interface{}{
			"status":          domain.PayoutProcessing,
			"last_attempt_at": time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

// BeginRetry claims a failed payout for another attempt and counts the
// attempt in the same statement, so a concurrent run cannot double-attempt.
func (r *PayoutRepository) BeginRetry(id uint, maxRetries int) (bool, error) {
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status = ? AND retry_count < ?", id, domain.PayoutFailed, maxRetries).
		Updates(map[string]interface{}{
			"status":          domain.PayoutProcessing,
			"retry_count":     gorm.Expr("retry_count + 1"),
			"last_attempt_at": time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

// CompleteAndSettle finishes a processing payout and rolls its amount into
// the charity totals in one transaction. The conditional status flip
// guarantees the totals move exactly once per payout.
func (r *PayoutRepository) CompleteAndSettle(id uint, externalID string) (bool, error) {
	settled := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p models.Payout
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Payout{}).
			Where("id = ? AND status = ?", id, domain.PayoutProcessing).
			Updates(map[string]interface{}{
				"status":             domain.PayoutCompleted,
				"external_payout_id": externalID,
				"completed_at":       time.Now(),
				"last_error":         "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Charity{}).Where("id = ?", p.CharityID).
			Updates(map[string]interface{}{
				"total_received_cents": gorm.Expr("total_received_cents + ?", p.AmountCents),
				"pending_amount_cents": gorm.Expr("pending_amount_cents - ?", p.AmountCents),
			}).Error; err != nil {
			return err
		}
		settled = true
		return nil
	})
	return settled, err
}

// MarkFailed records a failed attempt. Donations stay claimed by this payout
// so a retry reuses the same amount instead of re-aggregating.
func (r *PayoutRepository) MarkFailed(id uint, errMsg string, retryable bool, nextRetryAt time.Time) (bool, error) {
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, domain.PayoutProcessing).
		Updates(map[string]interface{}{
			"status":        domain.PayoutFailed,
			"retryable":     retryable,
			"last_error":    errMsg,
			"next_retry_at": nextRetryAt,
		})
	return res.RowsAffected == 1, res.Error
}

// Escalate parks a payout that exhausted its retries. Terminal; resuming
// requires manual intervention.
func (r *PayoutRepository) Escalate(id uint, errMsg string) (bool, error) {
	res := r.db.Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, domain.PayoutProcessing).
		Updates(map[string]interface{}{
			"status":     domain.PayoutEscalated,
			"last_error": errMsg,
		})
	return res.RowsAffected == 1, res.Error
}
