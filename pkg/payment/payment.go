package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransferRequest is one disbursement to a beneficiary account. The
// IdempotencyKey is stable across retries of the same payout, so a re-attempt
// after an unknown outcome cannot double-send.
type TransferRequest struct {
	IdempotencyKey string
	Reference      string
	AmountCents    int64
	Currency       string
	Account        string // destination (mobile money number for B2C)
	AccountName    string
	Description    string
}

type TransferResponse struct {
	TransferID string
	Status     string
}

type TransferProvider interface {
	SubmitTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)
}

// ProviderError is a failed provider call. Retryable distinguishes transient
// failures (timeout, rate limit, 5xx) from permanent ones (bad destination).
type ProviderError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider: %s %s", e.Code, e.Message)
}

// Classify maps an arbitrary error from a provider call to a ProviderError.
// Anything that is not an explicit provider rejection is treated as transient:
// a timeout is an unknown outcome, and an unknown outcome must stay retryable.
func Classify(err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Code: "timeout", Message: err.Error(), Retryable: true}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &ProviderError{Code: "timeout", Message: err.Error(), Retryable: true}
	}
	return &ProviderError{Code: "unavailable", Message: err.Error(), Retryable: true}
}
