package models

import (
	"time"

	"gorm.io/gorm"
)

type Campaign struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CharityID       uint       `gorm:"not null;index" json:"charity_id"`
	OwnerID         uint       `gorm:"not null;index" json:"owner_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	GoalAmountCents int64      `gorm:"not null" json:"goal_amount_cents"`
	RaisedCents     int64      `gorm:"not null;default:0" json:"raised_cents"`
	Currency        string     `gorm:"size:3;default:'KES'" json:"currency"`
	Status          string     `gorm:"size:20;not null;index" json:"status"` // ACTIVE, COMPLETED, AUTO_CLOSED, EXPIRED
	GoalReachedAt   *time.Time `json:"goal_reached_at"`
	ExpiresAt       time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Charity Charity `gorm:"foreignKey:CharityID" json:"-"`
	Owner   User    `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
