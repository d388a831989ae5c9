package models

import (
	"time"

	"gorm.io/gorm"
)

type Charity struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null;index" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// PayoutAccount is the destination the transfer provider disburses to
	// (mobile money number for the B2C API).
	PayoutAccount      string         `gorm:"size:64" json:"payout_account"`
	Currency           string         `gorm:"size:3;default:'KES'" json:"currency"`
	TotalReceivedCents int64          `gorm:"not null;default:0" json:"total_received_cents"`
	PendingAmountCents int64          `gorm:"not null;default:0" json:"pending_amount_cents"`
	IsActive           bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Charity) TableName() string {
	return "charities"
}

// CharityBalance is an aggregation row: a charity's completed, not-yet-settled
// donation total. Computed from donations, not from the stored pending counter.
type CharityBalance struct {
	CharityID     uint   `json:"charity_id"`
	Name          string `json:"name"`
	PendingCents  int64  `json:"pending_cents"`
	DonationCount int    `json:"donation_count"`
}
