package service

import (
	"log"
	"time"

	"giveflow/internal/domain"
)

type CampaignLifecycleStore interface {
	AutoCloseGoalReached(cutoff time.Time) (int64, error)
	MarkExpired(now time.Time) (int64, error)
}

type LifecycleResult struct {
	AutoClosed int64         `json:"auto_closed_count"`
	Expired    int64         `json:"expired_count"`
	Duration   time.Duration `json:"-"`
}

// LifecycleService closes campaigns whose goal-reached grace window has
// elapsed and expires campaigns past their deadline. Both operations are
// status-filtered conditional updates, so repeated or overlapping runs affect
// zero additional rows.
type LifecycleService struct {
	campaigns CampaignLifecycleStore
	now       func() time.Time
}

func NewLifecycleService(campaigns CampaignLifecycleStore) *LifecycleService {
	return &LifecycleService{campaigns: campaigns, now: time.Now}
}

func (s *LifecycleService) Run() (*LifecycleResult, error) {
	start := s.now()
	closed, err := s.campaigns.AutoCloseGoalReached(start.Add(-domain.AutoCloseAfter))
	if err != nil {
		return nil, err
	}
	expired, err := s.campaigns.MarkExpired(start)
	if err != nil {
		return nil, err
	}
	res := &LifecycleResult{AutoClosed: closed, Expired: expired, Duration: s.now().Sub(start)}
	log.Printf("[Lifecycle] auto_closed=%d expired=%d in %s", closed, expired, res.Duration)
	return res, nil
}
