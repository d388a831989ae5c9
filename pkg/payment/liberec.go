package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// LiberecProvider disburses via TheLiberec Card API B2C (business to customer).
type LiberecProvider struct {
	BaseURL  string
	Email    string
	Password string
	client   *http.Client
}

func NewLiberecProvider(baseURL, email, password string) *LiberecProvider {
	if baseURL == "" {
		baseURL = "https://card-api.theliberec.com"
	}
	return &LiberecProvider{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type liberecLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type liberecLoginResp struct {
	Token string `json:"token"`
}

// getToken logs in and returns a fresh token (per transaction as recommended).
func (p *LiberecProvider) getToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(liberecLoginReq{Email: p.Email, Password: p.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/merchants/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed: %d", resp.StatusCode)
	}
	var out liberecLoginResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

type b2cReq struct {
	Amount      string `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
	OrderID     string `json:"order_id"`
}

type b2cResp struct {
	UUID                     string `json:"uuid"`
	OrderID                  string `json:"order_id"`
	OriginatorConversationID string `json:"originator_conversation_id"`
	ConversationID           string `json:"conversation_id"`
	Amount                   int    `json:"amount"`
	PhoneNumber              string `json:"phone_number"`
	Status                   string `json:"status"`
	ResponseCode             string `json:"response_code"`
	ResponseDescription      string `json:"response_description"`
	CreatedAt                string `json:"created_at"`
}

// SubmitTransfer sends money to the beneficiary account. The payout's
// idempotency key is used as the provider order_id, so resubmitting the same
// payout is a no-op on the provider side.
func (p *LiberecProvider) SubmitTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, err
	}
	description := req.Description
	if description == "" {
		description = "Charity payout"
	}
	payload := b2cReq{
		Amount:      strconv.FormatInt(req.AmountCents/100, 10),
		PhoneNumber: req.Account,
		Description: description,
		Remarks:     "Payout to " + req.AccountName,
		OrderID:     req.IdempotencyKey,
	}
	bodyBytes, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/v1/transactions/mpesa/b2c", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	log.Printf("[Liberec B2C] POST %s/transactions/mpesa/b2c order_id=%s amount=%d account=%s", p.BaseURL, req.IdempotencyKey, req.AmountCents, req.Account)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("[Liberec B2C] response status=%d body=%s", resp.StatusCode, string(respBody))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &ProviderError{
			Code:      strconv.Itoa(resp.StatusCode),
			Message:   string(respBody),
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}
	var out b2cResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	transferID := out.UUID
	if transferID == "" {
		transferID = out.ConversationID
	}
	return &TransferResponse{TransferID: transferID, Status: out.Status}, nil
}
