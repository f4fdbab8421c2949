package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

const fraudAlertSubject = "fraud.alerts"

// NatsAlerter pushes fraud alerts over NATS so downstream risk tooling sees
// blocked attempts immediately. Best-effort like the Kafka publisher.
type NatsAlerter struct {
	nc *nats.Conn
}

func NewNatsAlerter(nc *nats.Conn) *NatsAlerter {
	return &NatsAlerter{nc: nc}
}

func (a *NatsAlerter) FraudAlert(_ context.Context, transactionID, reason string) {
	payload, err := json.Marshal(map[string]any{
		"transaction_id": transactionID,
		"reason":         reason,
		"timestamp":      time.Now(),
	})
	if err != nil {
		telemetry.Logger.Error("Failed to encode fraud alert", zap.Error(err))
		return
	}

	if err := a.nc.Publish(fraudAlertSubject, payload); err != nil {
		telemetry.Logger.Error("Failed to publish fraud alert",
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return
	}

	telemetry.Logger.Info("Fraud alert published",
		zap.String("transaction_id", transactionID),
		zap.String("reason", reason),
	)
}
