package models

import (
	"time"

	"gorm.io/gorm"
)

// Donation targets exactly one of CampaignID / CharityID. OrderID is the
// reference handed to the payment provider; its webhook settles the donation.
// PayoutID is set once, when the donation is claimed into a settlement batch.
type Donation struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	DonorID           uint           `gorm:"not null;index" json:"donor_id"`
	CampaignID        *uint          `gorm:"index" json:"campaign_id"`
	CharityID         *uint          `gorm:"index" json:"charity_id"`
	AmountCents       int64          `gorm:"not null" json:"amount_cents"`
	Currency          string         `gorm:"size:3;default:'KES'" json:"currency"`
	OrderID           string         `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	PaymentStatus     string         `gorm:"size:20;not null;index" json:"payment_status"` // PENDING, COMPLETED, FAILED, REFUNDED
	ProviderReference string         `gorm:"size:128" json:"provider_reference"`
	ProviderError     string         `gorm:"size:512" json:"provider_error"`
	ProcessedAt       *time.Time     `json:"processed_at"`
	PayoutID          *uint          `gorm:"index" json:"payout_id"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Donor    User      `gorm:"foreignKey:DonorID" json:"-"`
	Campaign *Campaign `gorm:"foreignKey:CampaignID" json:"-"`
	Charity  *Charity  `gorm:"foreignKey:CharityID" json:"-"`
}

func (Donation) TableName() string {
	return "donations"
}
