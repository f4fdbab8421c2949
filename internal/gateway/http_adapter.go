package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

// HTTPAdapter is the RealAdapter gateway variant: it forwards each operation
// to an external processor over HTTP. Wire shape mirrors the simulator's
// Result so the two variants are interchangeable behind Gateway.
type HTTPAdapter struct {
	client  *http.Client
	baseURL string
}

type gatewayWireRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"payment_method"`
	MerchantID    string `json:"merchant_id"`
}

type gatewayWireResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewHTTPAdapter(client *http.Client, baseURL string) *HTTPAdapter {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPAdapter{client: client, baseURL: baseURL}
}

func (a *HTTPAdapter) AuthorizeOrSettle(ctx context.Context, payment *models.Payment) Result {
	return a.post(ctx, "/authorize", payment, successStatusFor(payment.PaymentMethod))
}

func (a *HTTPAdapter) Capture(ctx context.Context, payment *models.Payment) Result {
	return a.post(ctx, "/capture", payment, models.StatusCaptured)
}

func (a *HTTPAdapter) Cancel(ctx context.Context, payment *models.Payment) Result {
	return a.post(ctx, "/cancel", payment, models.StatusCancelled)
}

func (a *HTTPAdapter) Refund(ctx context.Context, payment *models.Payment) Result {
	return a.post(ctx, "/refund", payment, models.StatusRefunded)
}

func (a *HTTPAdapter) post(ctx context.Context, path string, payment *models.Payment, fallbackStatus models.PaymentStatus) Result {
	body, err := json.Marshal(gatewayWireRequest{
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount.String(),
		Currency:      payment.Currency,
		PaymentMethod: string(payment.PaymentMethod),
		MerchantID:    payment.MerchantID,
	})
	if err != nil {
		return Result{Message: "Gateway request encoding failed"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Result{Message: "Gateway request build failed"}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{Message: "Gateway call interrupted"}
		}
		telemetry.Logger.Warn("Gateway call failed",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
		return Result{Message: "Gateway unreachable"}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Result{Message: "Gateway declined the operation"}
	}

	var wire gatewayWireResponse
	if err := json.NewDecoder(res.Body).Decode(&wire); err != nil {
		// A 2xx with an unreadable body still counts as a success.
		return Result{Success: true, Status: fallbackStatus, Message: successMessageFor(fallbackStatus)}
	}
	if !wire.Success {
		return Result{Message: wire.Message}
	}

	status := models.PaymentStatus(wire.Status)
	if status == "" {
		status = fallbackStatus
	}
	msg := wire.Message
	if msg == "" {
		msg = successMessageFor(status)
	}
	return Result{Success: true, Status: status, Message: msg}
}
