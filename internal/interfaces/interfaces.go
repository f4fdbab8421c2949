package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shibam-max/payment-processing-platform/internal/models"
)

// PaymentRepository is the storage contract for payments. Find methods return
// (nil, nil) when no row matches.
type PaymentRepository interface {
	Save(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, transactionID string, from, to models.PaymentStatus, gatewayResponse string) error
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	FindByUserID(ctx context.Context, userID int64) ([]models.Payment, error)
	FindByUserIDAndStatus(ctx context.Context, userID int64, status models.PaymentStatus) ([]models.Payment, error)
	CountRecentByUser(ctx context.Context, userID int64, since time.Time) (int64, error)
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
}

// PaymentReporter serves the merchant-facing read endpoints.
type PaymentReporter interface {
	FindByMerchantID(ctx context.Context, merchantID string) ([]models.Payment, error)
	TotalAmountByMerchantAndStatus(ctx context.Context, merchantID string, status models.PaymentStatus) (decimal.Decimal, error)
}

type MerchantRepository interface {
	FindByMerchantID(ctx context.Context, merchantID string) (*models.Merchant, error)
	FindActive(ctx context.Context) ([]models.Merchant, error)
	FindByCountry(ctx context.Context, country string) ([]models.Merchant, error)
	IsActiveMerchant(ctx context.Context, merchantID string) (bool, error)
}

// Cache is a TTL key-value store. Every failure degrades to a miss; callers
// never see cache errors.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Exists(ctx context.Context, key string) bool
}

// AuditTrail records lifecycle events, best-effort.
type AuditTrail interface {
	PaymentCreated(ctx context.Context, payment *models.Payment)
	PaymentStatusChanged(ctx context.Context, payment *models.Payment, oldStatus, newStatus models.PaymentStatus)
	RefundProcessed(ctx context.Context, payment *models.Payment)
	FraudDetected(ctx context.Context, transactionID, reason string)
}

// NotificationBus emits payment and refund notifications, best-effort.
type NotificationBus interface {
	PaymentNotification(ctx context.Context, payment *models.Payment)
	RefundNotification(ctx context.Context, payment *models.Payment)
}

// FraudAlerter raises out-of-band alerts when the risk gate blocks a request.
type FraudAlerter interface {
	FraudAlert(ctx context.Context, transactionID, reason string)
}

// PaymentService is the produced interface consumed by the HTTP layer.
// Expected business outcomes come back as failure-shaped responses, never
// as errors.
type PaymentService interface {
	ProcessPayment(ctx context.Context, req *models.PaymentRequest) *models.PaymentResponse
	GetPaymentByTransactionID(ctx context.Context, transactionID string) *models.PaymentResponse
	GetPaymentsByUserID(ctx context.Context, userID int64, status models.PaymentStatus) ([]models.PaymentResponse, error)
	RefundPayment(ctx context.Context, transactionID string) *models.PaymentResponse
	CapturePayment(ctx context.Context, transactionID string) *models.PaymentResponse
	CancelPayment(ctx context.Context, transactionID string) *models.PaymentResponse
}
