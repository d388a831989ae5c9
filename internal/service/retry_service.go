package service

import (
	"context"
	"errors"
	"log"
	"time"

	"giveflow/internal/domain"

	"gorm.io/gorm"
)

// RetryService re-attempts failed payouts with a bounded budget. The delay
// between attempts is a fixed window; provider calls are idempotent per
// payout, so exponential backoff buys nothing here.
type RetryService struct {
	store      PayoutStore
	payouts    *PayoutService
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
}

func NewRetryService(store PayoutStore, payouts *PayoutService, maxRetries int, retryDelay time.Duration) *RetryService {
	return &RetryService{
		store:      store,
		payouts:    payouts,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		now:        time.Now,
	}
}

// RetryFailed re-attempts every failed, retryable payout whose delay window
// has elapsed. The attempt is counted in the same conditional write that
// claims the payout, so concurrent coordinator runs cannot double-attempt.
func (s *RetryService) RetryFailed(ctx context.Context) (*BatchReport, error) {
	cutoff := s.now().Add(-s.retryDelay)
	eligible, err := s.store.ListRetryable(s.maxRetries, cutoff)
	if err != nil {
		return nil, err
	}
	report := &BatchReport{Details: []PayoutResult{}}
	for i := range eligible {
		p := &eligible[i]
		ok, err := s.store.BeginRetry(p.ID, s.maxRetries)
		if err != nil {
			log.Printf("[Retry] %d begin failed: %v", p.ID, err)
			continue
		}
		if !ok {
			continue
		}
		p.RetryCount++
		report.add(s.payouts.Attempt(ctx, p))
	}
	return report, nil
}

// RetryOne is the manual override: it skips the delay window but still
// refuses terminal payouts and an exhausted retry budget.
func (s *RetryService) RetryOne(ctx context.Context, payoutID uint) (*PayoutResult, error) {
	p, err := s.store.GetByID(payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Status != domain.PayoutFailed || p.RetryCount >= s.maxRetries {
		return nil, ErrInvalidState
	}
	ok, err := s.store.BeginRetry(p.ID, s.maxRetries)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	p.RetryCount++
	res := s.payouts.Attempt(ctx, p)
	return &res, nil
}
