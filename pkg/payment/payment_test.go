package payment_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"giveflow/pkg/payment"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyPassesThroughProviderError(t *testing.T) {
	orig := &payment.ProviderError{Code: "400", Message: "invalid destination account", Retryable: false}
	got := payment.Classify(fmt.Errorf("submit transfer: %w", orig))
	if got != orig {
		t.Fatalf("got %+v, want wrapped original", got)
	}
	if got.Retryable {
		t.Errorf("permanent rejection became retryable")
	}
}

func TestClassifyDeadlineExceeded(t *testing.T) {
	got := payment.Classify(context.DeadlineExceeded)
	if !got.Retryable || got.Code != "timeout" {
		t.Fatalf("got %+v, want retryable timeout", got)
	}
}

func TestClassifyNetTimeout(t *testing.T) {
	got := payment.Classify(fmt.Errorf("post: %w", timeoutErr{}))
	if !got.Retryable || got.Code != "timeout" {
		t.Fatalf("got %+v, want retryable timeout", got)
	}
}

func TestClassifyUnknownErrorIsRetryable(t *testing.T) {
	got := payment.Classify(errors.New("connection reset by peer"))
	if !got.Retryable {
		t.Fatalf("got %+v, unknown outcomes must stay retryable", got)
	}
}
