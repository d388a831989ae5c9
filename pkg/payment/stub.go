package payment

import (
	"context"
	"fmt"
	"time"
)

// StubProvider is a no-op provider for development; every transfer succeeds.
type StubProvider struct{}

func (s *StubProvider) SubmitTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	ref := fmt.Sprintf("stub_%d", time.Now().UnixNano())
	return &TransferResponse{TransferID: ref, Status: "COMPLETED"}, nil
}
