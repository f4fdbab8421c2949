package gateway

import (
	"context"

	"github.com/shibam-max/payment-processing-platform/internal/models"
)

// Result is a single gateway outcome. Failures are outcomes, not errors;
// the gateway never mutates payment state itself.
type Result struct {
	Success bool
	Status  models.PaymentStatus
	Message string
}

// Gateway is the external settlement capability. Each operation is a single
// attempt; retry policy belongs to the caller.
type Gateway interface {
	AuthorizeOrSettle(ctx context.Context, payment *models.Payment) Result
	Capture(ctx context.Context, payment *models.Payment) Result
	Cancel(ctx context.Context, payment *models.Payment) Result
	Refund(ctx context.Context, payment *models.Payment) Result
}

// successStatusFor maps a payment method to the status a successful
// authorize/settle call lands in.
func successStatusFor(method models.PaymentMethod) models.PaymentStatus {
	switch method {
	case models.MethodCard:
		return models.StatusAuthorized
	case models.MethodWallet:
		return models.StatusSettled
	case models.MethodBankTransfer:
		return models.StatusCaptured
	default:
		return models.StatusAuthorized
	}
}

func successMessageFor(status models.PaymentStatus) string {
	switch status {
	case models.StatusAuthorized:
		return "Payment authorized successfully"
	case models.StatusCaptured:
		return "Payment captured successfully"
	case models.StatusSettled:
		return "Payment settled successfully"
	default:
		return "Payment processed successfully"
	}
}
