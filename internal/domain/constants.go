package domain

import "time"

const (
	RoleDonor = "DONOR"
	RoleAdmin = "ADMIN"
)

const (
	CampaignActive     = "ACTIVE"
	CampaignCompleted  = "COMPLETED"
	CampaignAutoClosed = "AUTO_CLOSED"
	CampaignExpired    = "EXPIRED"
)

const (
	DonationPending   = "PENDING"
	DonationCompleted = "COMPLETED"
	DonationFailed    = "FAILED"
	DonationRefunded  = "REFUNDED"
)

const (
	PayoutPending    = "PENDING"
	PayoutProcessing = "PROCESSING"
	PayoutCompleted  = "COMPLETED"
	PayoutFailed     = "FAILED"
	PayoutEscalated  = "ESCALATED"
)

const (
	JobCampaignLifecycle = "campaign-lifecycle"
	JobCharityPayouts    = "charity-payouts"
)

// A campaign whose goal has been reached is auto-closed after this grace window.
const AutoCloseAfter = 28 * 24 * time.Hour
