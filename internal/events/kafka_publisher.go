package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

const (
	TopicPaymentNotifications = "payment-notifications"
	TopicRefundNotifications  = "refund-notifications"
	TopicAuditEvents          = "audit-events"
)

// KafkaPublisher emits audit and notification events. Publishing is
// fire-and-forget: errors are logged and swallowed, the payment flow never
// waits on a broker.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) PaymentCreated(ctx context.Context, payment *models.Payment) {
	p.publish(ctx, TopicAuditEvents, payment.TransactionID, auditEvent("PAYMENT_CREATED", payment))
}

func (p *KafkaPublisher) PaymentStatusChanged(ctx context.Context, payment *models.Payment, oldStatus, newStatus models.PaymentStatus) {
	event := auditEvent("PAYMENT_STATUS_CHANGED", payment)
	event["old_status"] = oldStatus
	event["new_status"] = newStatus
	p.publish(ctx, TopicAuditEvents, payment.TransactionID, event)
}

func (p *KafkaPublisher) RefundProcessed(ctx context.Context, payment *models.Payment) {
	p.publish(ctx, TopicAuditEvents, payment.TransactionID, auditEvent("REFUND_PROCESSED", payment))
}

func (p *KafkaPublisher) FraudDetected(ctx context.Context, transactionID, reason string) {
	p.publish(ctx, TopicAuditEvents, transactionID, map[string]any{
		"event_type":     "FRAUD_DETECTED",
		"transaction_id": transactionID,
		"reason":         reason,
		"timestamp":      time.Now(),
	})
}

func (p *KafkaPublisher) PaymentNotification(ctx context.Context, payment *models.Payment) {
	p.publish(ctx, TopicPaymentNotifications, payment.TransactionID, map[string]any{
		"transaction_id": payment.TransactionID,
		"user_id":        payment.UserID,
		"amount":         payment.Amount,
		"currency":       payment.Currency,
		"status":         payment.Status,
		"payment_method": payment.PaymentMethod,
		"merchant_id":    payment.MerchantID,
		"timestamp":      payment.UpdatedAt,
	})
}

func (p *KafkaPublisher) RefundNotification(ctx context.Context, payment *models.Payment) {
	p.publish(ctx, TopicRefundNotifications, payment.TransactionID, map[string]any{
		"transaction_id": payment.TransactionID,
		"user_id":        payment.UserID,
		"amount":         payment.Amount,
		"currency":       payment.Currency,
		"merchant_id":    payment.MerchantID,
		"timestamp":      payment.UpdatedAt,
	})
}

func auditEvent(eventType string, payment *models.Payment) map[string]any {
	return map[string]any{
		"event_type":     eventType,
		"transaction_id": payment.TransactionID,
		"user_id":        payment.UserID,
		"amount":         payment.Amount,
		"currency":       payment.Currency,
		"status":         payment.Status,
		"payment_method": payment.PaymentMethod,
		"merchant_id":    payment.MerchantID,
		"timestamp":      time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, event map[string]any) {
	value, err := json.Marshal(event)
	if err != nil {
		telemetry.Logger.Error("Failed to encode event", zap.String("topic", topic), zap.Error(err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		telemetry.Logger.Error("Failed to publish event",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}

	telemetry.Logger.Info("Event published",
		zap.String("topic", topic),
		zap.String("key", key),
	)
}
