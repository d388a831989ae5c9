package repository

import (
	"giveflow/internal/domain"
	"giveflow/internal/models"

	"gorm.io/gorm"
)

type CharityRepository struct {
	db *gorm.DB
}

func NewCharityRepository(db *gorm.DB) *CharityRepository {
	return &CharityRepository{db: db}
}

func (r *CharityRepository) Create(ch *models.Charity) error {
	return r.db.Create(ch).Error
}

func (r *CharityRepository) GetByID(id uint) (*models.Charity, error) {
	var ch models.Charity
	err := r.db.First(&ch, id).Error
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *CharityRepository) ListActive() ([]models.Charity, error) {
	var out []models.Charity
	err := r.db.Where("is_active = ?", true).Order("id").Find(&out).Error
	return out, err
}

// AddPending rolls a freshly settled donation into the charity's pending
// (not yet disbursed) counter.
func (r *CharityRepository) AddPending(charityID uint, amountCents int64) error {
	return r.db.Model(&models.Charity{}).Where("id = ?", charityID).
		Update("pending_amount_cents", gorm.Expr("pending_amount_cents + ?", amountCents)).Error
}

// EligibleBalances sums completed, unsettled donations per active charity.
// Donations to a campaign count toward the campaign's owning charity. Only
// charities at or above the minimum payout amount are returned, ordered by id
// so runs are reproducible.
func (r *CharityRepository) EligibleBalances(minCents int64) ([]models.CharityBalance, error) {
	var out []models.CharityBalance
	err := r.db.Raw(`
		SELECT ch.id AS charity_id, ch.name AS name,
		       SUM(d.amount_cents) AS pending_cents, COUNT(d.id) AS donation_count
		FROM donations d
		LEFT JOIN campaigns cp ON cp.id = d.campaign_id AND cp.deleted_at IS NULL
		JOIN charities ch ON ch.id = COALESCE(d.charity_id, cp.charity_id)
		WHERE d.payment_status = ? AND d.payout_id IS NULL AND d.deleted_at IS NULL
		  AND ch.is_active = 1 AND ch.deleted_at IS NULL
		GROUP BY ch.id, ch.name
		HAVING SUM(d.amount_cents) >= ?
		ORDER BY ch.id`, domain.DonationCompleted, minCents).Scan(&out).Error
	return out, err
}
