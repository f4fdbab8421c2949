package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrorKind classifies failure responses so the HTTP layer can branch on a
// typed value instead of matching message text.
type ErrorKind string

const (
	KindNone     ErrorKind = ""
	KindClient   ErrorKind = "CLIENT_ERROR"
	KindSecurity ErrorKind = "SECURITY_REJECTION"
	KindGateway  ErrorKind = "GATEWAY_FAILURE"
	KindNotFound ErrorKind = "NOT_FOUND"
	KindInternal ErrorKind = "INTERNAL_ERROR"
)

// PaymentRequest is the inbound DTO. Card fields are used in memory for the
// Luhn check only and must never be persisted, cached or logged.
type PaymentRequest struct {
	UserID        int64           `json:"user_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
	MerchantID    string          `json:"merchant_id" binding:"required"`
	Description   string          `json:"description,omitempty"`

	// Card details, populated only for CARD payments.
	CardNumber     string `json:"card_number,omitempty"`
	ExpiryMonth    string `json:"expiry_month,omitempty"`
	ExpiryYear     string `json:"expiry_year,omitempty"`
	CVV            string `json:"cvv,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
}

type PaymentResponse struct {
	TransactionID string          `json:"transaction_id,omitempty"`
	UserID        int64           `json:"user_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Status        PaymentStatus   `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	MerchantID    string          `json:"merchant_id,omitempty"`
	Description   string          `json:"description,omitempty"`
	Message       string          `json:"message"`
	ErrorCode     ErrorKind       `json:"error_code,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

// Kind returns the failure classification of the response, KindNone for
// successful outcomes.
func (r *PaymentResponse) Kind() ErrorKind {
	return r.ErrorCode
}

func SuccessResponse(transactionID string, status PaymentStatus, message string) *PaymentResponse {
	return &PaymentResponse{
		TransactionID: transactionID,
		Status:        status,
		Message:       message,
	}
}

func ErrorResponse(transactionID string, kind ErrorKind, message string) *PaymentResponse {
	return &PaymentResponse{
		TransactionID: transactionID,
		Status:        StatusFailed,
		Message:       message,
		ErrorCode:     kind,
	}
}

// ResponseFromPayment mirrors the persisted payment's current fields.
func ResponseFromPayment(p *Payment) *PaymentResponse {
	created := p.CreatedAt
	updated := p.UpdatedAt
	return &PaymentResponse{
		TransactionID: p.TransactionID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		MerchantID:    p.MerchantID,
		Description:   p.Description,
		Message:       "Payment " + strings.ToLower(string(p.Status)),
		CreatedAt:     &created,
		UpdatedAt:     &updated,
	}
}
