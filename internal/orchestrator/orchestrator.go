package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/config"
	"github.com/shibam-max/payment-processing-platform/internal/fraud"
	"github.com/shibam-max/payment-processing-platform/internal/gateway"
	"github.com/shibam-max/payment-processing-platform/internal/interfaces"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/repository"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

// Orchestrator drives a payment through its lifecycle: validation, the risk
// gate, persistence, the gateway call, write-through caching and event
// emission. It is the only writer of payment state.
type Orchestrator struct {
	cfg       *config.Config
	payments  interfaces.PaymentRepository
	merchants interfaces.MerchantRepository
	cache     interfaces.Cache
	scorer    *fraud.Scorer
	gateway   gateway.Gateway
	audit     interfaces.AuditTrail
	notifier  interfaces.NotificationBus
	alerter   interfaces.FraudAlerter
	now       func() time.Time
}

func New(
	cfg *config.Config,
	payments interfaces.PaymentRepository,
	merchants interfaces.MerchantRepository,
	cache interfaces.Cache,
	scorer *fraud.Scorer,
	gw gateway.Gateway,
	audit interfaces.AuditTrail,
	notifier interfaces.NotificationBus,
	alerter interfaces.FraudAlerter,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		payments:  payments,
		merchants: merchants,
		cache:     cache,
		scorer:    scorer,
		gateway:   gw,
		audit:     audit,
		notifier:  notifier,
		alerter:   alerter,
		now:       time.Now,
	}
}

func paymentCacheKey(transactionID string) string {
	return "payment:" + transactionID
}

// ProcessPayment runs the full submission protocol. Once a transaction id is
// minted, every outcome carries it.
func (o *Orchestrator) ProcessPayment(ctx context.Context, req *models.PaymentRequest) *models.PaymentResponse {
	transactionID := NewTransactionID()

	telemetry.Logger.Info("Processing payment",
		zap.String("transaction_id", transactionID),
		zap.Int64("user_id", req.UserID),
		zap.String("amount", req.Amount.String()),
		zap.String("payment_method", string(req.PaymentMethod)),
	)

	if !req.Amount.GreaterThan(decimal.Zero) {
		return models.ErrorResponse(transactionID, models.KindClient, "Amount must be greater than zero")
	}
	if !o.cfg.AllowsCurrency(req.Currency) {
		return models.ErrorResponse(transactionID, models.KindClient, "Invalid currency code")
	}

	active, err := o.merchants.IsActiveMerchant(ctx, req.MerchantID)
	if err != nil {
		telemetry.Logger.Error("Merchant lookup failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return models.ErrorResponse(transactionID, models.KindInternal, "Payment processing failed")
	}
	if !active {
		telemetry.Logger.Warn("Invalid merchant",
			zap.String("transaction_id", transactionID),
			zap.String("merchant_id", req.MerchantID),
		)
		return models.ErrorResponse(transactionID, models.KindClient, "Invalid merchant ID")
	}

	if resp := o.riskGate(ctx, transactionID, req); resp != nil {
		return resp
	}

	// Id collisions are astronomically unlikely; treat one as fatal to this
	// attempt rather than retrying.
	taken, err := o.payments.ExistsByTransactionID(ctx, transactionID)
	if err != nil {
		telemetry.Logger.Error("Transaction id check failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return models.ErrorResponse(transactionID, models.KindInternal, "Payment processing failed")
	}
	if taken {
		telemetry.Logger.Error("Transaction id collision",
			zap.String("transaction_id", transactionID),
		)
		return models.ErrorResponse(transactionID, models.KindInternal, "Payment processing failed")
	}

	createdAt := o.now()
	payment := &models.Payment{
		TransactionID: transactionID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        models.StatusPending,
		PaymentMethod: req.PaymentMethod,
		MerchantID:    req.MerchantID,
		Description:   req.Description,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	if err := o.payments.Save(ctx, payment); err != nil {
		telemetry.Logger.Error("Failed to persist payment",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return models.ErrorResponse(transactionID, models.KindInternal, "Payment processing failed")
	}

	o.cache.Set(ctx, paymentCacheKey(transactionID), payment, o.cfg.CacheTTL)
	o.audit.PaymentCreated(ctx, payment)

	result := o.gateway.AuthorizeOrSettle(ctx, payment)

	newStatus := models.StatusFailed
	if result.Success {
		newStatus = result.Status
	}

	if resp := o.commitTransition(ctx, payment, models.StatusPending, newStatus, result.Message); resp != nil {
		return resp
	}

	o.notifier.PaymentNotification(ctx, payment)

	resp := models.ResponseFromPayment(payment)
	resp.Message = result.Message
	if !result.Success {
		resp.ErrorCode = models.KindGateway
	}

	telemetry.Logger.Info("Payment processed",
		zap.String("transaction_id", transactionID),
		zap.String("status", string(payment.Status)),
	)
	return resp
}

// riskGate runs the velocity check and the scorer. A non-nil response is the
// terminal rejection; no record is persisted and the gateway is not contacted.
func (o *Orchestrator) riskGate(ctx context.Context, transactionID string, req *models.PaymentRequest) *models.PaymentResponse {
	since := o.now().Add(-o.cfg.Risk.VelocityWindow)
	attempts, err := o.payments.CountRecentByUser(ctx, req.UserID, since)
	if err != nil {
		telemetry.Logger.Error("Velocity check failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return models.ErrorResponse(transactionID, models.KindInternal, "Payment processing failed")
	}
	if attempts > o.cfg.Risk.VelocityLimit {
		reason := "Too many payment attempts"
		o.audit.FraudDetected(ctx, transactionID, reason)
		o.alerter.FraudAlert(ctx, transactionID, reason)
		return models.ErrorResponse(transactionID, models.KindSecurity, "Too many payment attempts. Please try again later.")
	}

	decision := o.scorer.Evaluate(req)
	if !decision.Accepted {
		o.audit.FraudDetected(ctx, transactionID, decision.Reason)
		o.alerter.FraudAlert(ctx, transactionID, decision.Reason)
		return models.ErrorResponse(transactionID, models.KindSecurity, "Payment blocked by security checks: "+decision.Reason)
	}

	return nil
}

// GetPaymentByTransactionID is a cache-first read; a miss falls back to
// storage and repopulates the cache.
func (o *Orchestrator) GetPaymentByTransactionID(ctx context.Context, transactionID string) *models.PaymentResponse {
	var cached models.Payment
	if o.cache.Get(ctx, paymentCacheKey(transactionID), &cached) {
		return models.ResponseFromPayment(&cached)
	}

	payment, err := o.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		telemetry.Logger.Error("Payment lookup failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return models.ErrorResponse(transactionID, models.KindInternal, "Payment lookup failed")
	}
	if payment == nil {
		return models.ErrorResponse(transactionID, models.KindNotFound, "Payment not found")
	}

	o.cache.Set(ctx, paymentCacheKey(transactionID), payment, o.cfg.CacheTTL)
	return models.ResponseFromPayment(payment)
}

// GetPaymentsByUserID lists a user's payments, optionally narrowed to one
// status.
func (o *Orchestrator) GetPaymentsByUserID(ctx context.Context, userID int64, status models.PaymentStatus) ([]models.PaymentResponse, error) {
	var payments []models.Payment
	var err error
	if status == "" {
		payments, err = o.payments.FindByUserID(ctx, userID)
	} else {
		payments, err = o.payments.FindByUserIDAndStatus(ctx, userID, status)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *models.ResponseFromPayment(&payments[i]))
	}
	return responses, nil
}

// RefundPayment moves SETTLED to REFUNDED through the gateway. Refund is only
// legal from SETTLED.
func (o *Orchestrator) RefundPayment(ctx context.Context, transactionID string) *models.PaymentResponse {
	payment, resp := o.loadForTransition(ctx, transactionID, models.EventRefund, "refunded")
	if resp != nil {
		return resp
	}

	result := o.gateway.Refund(ctx, payment)
	if !result.Success {
		return models.ErrorResponse(transactionID, models.KindGateway, result.Message)
	}

	if resp := o.commitTransition(ctx, payment, models.StatusSettled, models.StatusRefunded, result.Message); resp != nil {
		return resp
	}

	o.audit.RefundProcessed(ctx, payment)
	o.notifier.RefundNotification(ctx, payment)

	telemetry.Logger.Info("Refund processed", zap.String("transaction_id", transactionID))
	out := models.ResponseFromPayment(payment)
	out.Message = result.Message
	return out
}

// CapturePayment finalizes an authorization.
func (o *Orchestrator) CapturePayment(ctx context.Context, transactionID string) *models.PaymentResponse {
	payment, resp := o.loadForTransition(ctx, transactionID, models.EventCapture, "captured")
	if resp != nil {
		return resp
	}

	result := o.gateway.Capture(ctx, payment)
	if !result.Success {
		return models.ErrorResponse(transactionID, models.KindGateway, result.Message)
	}

	if resp := o.commitTransition(ctx, payment, models.StatusAuthorized, models.StatusCaptured, result.Message); resp != nil {
		return resp
	}

	o.notifier.PaymentNotification(ctx, payment)

	telemetry.Logger.Info("Payment captured", zap.String("transaction_id", transactionID))
	out := models.ResponseFromPayment(payment)
	out.Message = result.Message
	return out
}

// CancelPayment voids a payment that has not been captured yet.
func (o *Orchestrator) CancelPayment(ctx context.Context, transactionID string) *models.PaymentResponse {
	payment, resp := o.loadForTransition(ctx, transactionID, models.EventCancel, "cancelled")
	if resp != nil {
		return resp
	}

	result := o.gateway.Cancel(ctx, payment)
	if !result.Success {
		return models.ErrorResponse(transactionID, models.KindGateway, result.Message)
	}

	if resp := o.commitTransition(ctx, payment, payment.Status, models.StatusCancelled, result.Message); resp != nil {
		return resp
	}

	o.notifier.PaymentNotification(ctx, payment)

	telemetry.Logger.Info("Payment cancelled", zap.String("transaction_id", transactionID))
	out := models.ResponseFromPayment(payment)
	out.Message = result.Message
	return out
}

// loadForTransition fetches the current record and verifies the state-machine
// precondition before any gateway contact.
func (o *Orchestrator) loadForTransition(ctx context.Context, transactionID string, event models.PaymentEvent, verb string) (*models.Payment, *models.PaymentResponse) {
	payment, err := o.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		telemetry.Logger.Error("Payment lookup failed",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return nil, models.ErrorResponse(transactionID, models.KindInternal, "Payment lookup failed")
	}
	if payment == nil {
		return nil, models.ErrorResponse(transactionID, models.KindNotFound, "Payment not found")
	}

	if !models.CanTransition(payment.Status, event) {
		return nil, models.ErrorResponse(transactionID, models.KindClient,
			"Payment cannot be "+verb+". Current status: "+string(payment.Status))
	}

	return payment, nil
}

// commitTransition persists a status change with a compare-and-swap on the
// source status, then refreshes the cache and the audit trail. A lost swap
// means a concurrent writer; the caller's payment is left untouched.
func (o *Orchestrator) commitTransition(ctx context.Context, payment *models.Payment, from, to models.PaymentStatus, gatewayMessage string) *models.PaymentResponse {
	err := o.payments.UpdateStatus(ctx, payment.TransactionID, from, to, gatewayMessage)
	if errors.Is(err, repository.ErrStatusConflict) {
		telemetry.Logger.Warn("Concurrent status update detected",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return models.ErrorResponse(payment.TransactionID, models.KindClient,
			"Payment was updated concurrently. Please retry.")
	}
	if err != nil {
		telemetry.Logger.Error("Failed to update payment status",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
		return models.ErrorResponse(payment.TransactionID, models.KindInternal, "Payment processing failed")
	}

	payment.Status = to
	payment.GatewayResponse = gatewayMessage
	payment.UpdatedAt = o.now()

	o.cache.Set(ctx, paymentCacheKey(payment.TransactionID), payment, o.cfg.CacheTTL)
	o.audit.PaymentStatusChanged(ctx, payment, from, to)

	telemetry.Logger.Info("Payment state transition",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(to)),
	)
	return nil
}
