package models

import (
	"time"
)

// Payout is one settlement unit: the completed donations claimed for a charity
// and disbursed in a single provider transfer. Rows are never deleted; failed
// and escalated payouts stay behind as the audit record of what happened.
type Payout struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	CharityID     uint   `gorm:"not null;index" json:"charity_id"`
	Reference     string `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	AmountCents   int64  `gorm:"not null" json:"amount_cents"`
	Currency      string `gorm:"size:3;default:'KES'" json:"currency"`
	DonationCount int    `gorm:"not null" json:"donation_count"`
	Status        string `gorm:"size:20;not null;index" json:"status"` // PENDING, PROCESSING, COMPLETED, FAILED, ESCALATED
	// Retryable is cleared on permanent provider failures (bad destination
	// account and the like); the retry coordinator skips those.
	Retryable        bool       `gorm:"not null;default:true" json:"retryable"`
	RetryCount       int        `gorm:"not null;default:0" json:"retry_count"`
	LastAttemptAt    *time.Time `json:"last_attempt_at"`
	NextRetryAt      *time.Time `json:"next_retry_at"`
	IdempotencyKey   string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExternalPayoutID string     `gorm:"size:128" json:"external_payout_id"`
	LastError        string     `gorm:"size:512" json:"last_error"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Charity Charity `gorm:"foreignKey:CharityID" json:"-"`
}

func (Payout) TableName() string {
	return "payouts"
}
