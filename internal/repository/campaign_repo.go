package repository

import (
	"time"

	"giveflow/internal/domain"
	"giveflow/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(cp *models.Campaign) error {
	return r.db.Create(cp).Error
}

func (r *CampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	var cp models.Campaign
	err := r.db.First(&cp, id).Error
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *CampaignRepository) List() ([]models.Campaign, error) {
	var out []models.Campaign
	err := r.db.Order("id DESC").Find(&out).Error
	return out, err
}

// AutoCloseGoalReached flips every active campaign whose goal was reached on
// or before cutoff to AUTO_CLOSED. The status filter makes the batch
// idempotent: a repeat run matches zero rows.
func (r *CampaignRepository) AutoCloseGoalReached(cutoff time.Time) (int64, error) {
	res := r.db.Model(&models.Campaign{}).
		Where("status = ? AND goal_reached_at IS NOT NULL AND goal_reached_at <= ?", domain.CampaignActive, cutoff).
		Update("status", domain.CampaignAutoClosed)
	return res.RowsAffected, res.Error
}

// MarkExpired flips every active campaign past its expiry to EXPIRED.
func (r *CampaignRepository) MarkExpired(now time.Time) (int64, error) {
	res := r.db.Model(&models.Campaign{}).
		Where("status = ? AND expires_at <= ?", domain.CampaignActive, now).
		Update("status", domain.CampaignExpired)
	return res.RowsAffected, res.Error
}

// AddRaised rolls a settled donation into the campaign total.
func (r *CampaignRepository) AddRaised(campaignID uint, amountCents int64) error {
	return r.db.Model(&models.Campaign{}).Where("id = ?", campaignID).
		Update("raised_cents", gorm.Expr("raised_cents + ?", amountCents)).Error
}

// SetGoalReached stamps goal_reached_at the first time the raised total meets
// the goal. Conditional on the stamp being unset, so only one settlement wins.
func (r *CampaignRepository) SetGoalReached(campaignID uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.Campaign{}).
		Where("id = ? AND goal_reached_at IS NULL AND raised_cents >= goal_amount_cents", campaignID).
		Update("goal_reached_at", at)
	return res.RowsAffected == 1, res.Error
}

// Complete lets the owner end an active campaign early.
func (r *CampaignRepository) Complete(campaignID uint) (bool, error) {
	res := r.db.Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaignID, domain.CampaignActive).
		Update("status", domain.CampaignCompleted)
	return res.RowsAffected == 1, res.Error
}
