package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/config"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

var declineMessages = []string{
	"Insufficient funds",
	"Card declined by issuer",
	"Invalid card details",
	"Transaction limit exceeded",
	"Gateway timeout",
	"Network error",
	"Invalid merchant configuration",
}

// Simulator is the Simulated gateway variant: random outcomes with the
// configured per-operation success probabilities, after a bounded random
// latency. Safe for concurrent use.
type Simulator struct {
	cfg config.GatewayConfig

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(cfg config.GatewayConfig) *Simulator {
	return &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSimulatorWithSource fixes the randomness source so tests can force
// deterministic outcomes.
func NewSimulatorWithSource(cfg config.GatewayConfig, src rand.Source) *Simulator {
	return &Simulator{cfg: cfg, rng: rand.New(src)}
}

func (s *Simulator) AuthorizeOrSettle(ctx context.Context, payment *models.Payment) Result {
	if !s.wait(ctx) {
		return Result{Message: "Payment processing interrupted"}
	}

	if s.roll() < s.cfg.AuthorizeSuccessRate {
		status := successStatusFor(payment.PaymentMethod)
		telemetry.Logger.Info("Gateway authorize success",
			zap.String("transaction_id", payment.TransactionID),
			zap.String("status", string(status)),
		)
		return Result{Success: true, Status: status, Message: successMessageFor(status)}
	}

	msg := s.declineMessage()
	telemetry.Logger.Warn("Gateway authorize declined",
		zap.String("transaction_id", payment.TransactionID),
		zap.String("reason", msg),
	)
	return Result{Message: msg}
}

func (s *Simulator) Capture(ctx context.Context, payment *models.Payment) Result {
	if !s.wait(ctx) {
		return Result{Message: "Capture processing interrupted"}
	}

	if s.roll() < s.cfg.CaptureSuccessRate {
		return Result{Success: true, Status: models.StatusCaptured, Message: "Payment captured successfully"}
	}
	return Result{Message: "Capture processing failed at gateway"}
}

func (s *Simulator) Cancel(ctx context.Context, payment *models.Payment) Result {
	if !s.wait(ctx) {
		return Result{Message: "Cancellation processing interrupted"}
	}

	if s.roll() < s.cfg.CancelSuccessRate {
		return Result{Success: true, Status: models.StatusCancelled, Message: "Payment cancelled successfully"}
	}
	return Result{Message: "Cancellation processing failed at gateway"}
}

func (s *Simulator) Refund(ctx context.Context, payment *models.Payment) Result {
	if !s.wait(ctx) {
		return Result{Message: "Refund processing interrupted"}
	}

	if s.roll() < s.cfg.RefundSuccessRate {
		return Result{Success: true, Status: models.StatusRefunded, Message: "Refund processed successfully"}
	}
	return Result{Message: "Refund processing failed at gateway"}
}

// wait blocks for the simulated latency; a cancelled context ends the wait
// early and reports failure to the caller.
func (s *Simulator) wait(ctx context.Context) bool {
	window := s.cfg.MaxLatency - s.cfg.MinLatency
	latency := s.cfg.MinLatency
	if window > 0 {
		s.mu.Lock()
		latency += time.Duration(s.rng.Int63n(int64(window)))
		s.mu.Unlock()
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) declineMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return declineMessages[s.rng.Intn(len(declineMessages))]
}
