package fraud

import (
	"time"

	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/config"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

// Decision is the outcome of the risk gate for one request.
type Decision struct {
	Accepted bool
	Score    float64
	Reason   string
}

// Scorer evaluates payment requests against the configured risk policy.
// It is a pure function of the request and the clock; the velocity check
// lives in the orchestrator because it reads recent-attempt state.
type Scorer struct {
	cfg config.RiskConfig
	now func() time.Time
}

func NewScorer(cfg config.RiskConfig) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// NewScorerWithClock injects the clock used for the night-hours factor.
func NewScorerWithClock(cfg config.RiskConfig, now func() time.Time) *Scorer {
	return &Scorer{cfg: cfg, now: now}
}

// Evaluate runs the ceiling check, the card check and the additive risk
// score. The checks are independent; the first failure decides the outcome.
func (s *Scorer) Evaluate(req *models.PaymentRequest) Decision {
	if req.Amount.GreaterThan(s.cfg.MaxAmount) {
		telemetry.Logger.Warn("Transaction amount exceeds limit",
			zap.Int64("user_id", req.UserID),
			zap.String("amount", req.Amount.String()),
		)
		return Decision{Reason: "Transaction amount exceeds limit"}
	}

	if req.PaymentMethod == models.MethodCard && !s.validCard(req) {
		telemetry.Logger.Warn("Invalid card details detected", zap.Int64("user_id", req.UserID))
		return Decision{Reason: "Invalid card details"}
	}

	score := s.riskScore(req)
	if score > s.cfg.ScoreThreshold {
		telemetry.Logger.Warn("High risk score detected",
			zap.Int64("user_id", req.UserID),
			zap.Float64("risk_score", score),
		)
		return Decision{Score: score, Reason: "Risk score too high"}
	}

	return Decision{Accepted: true, Score: score}
}

func (s *Scorer) validCard(req *models.PaymentRequest) bool {
	number := stripSpaces(req.CardNumber)
	if len(number) < s.cfg.MinCardDigits {
		return false
	}
	return ValidLuhn(number)
}

func (s *Scorer) riskScore(req *models.PaymentRequest) float64 {
	score := 0.0

	if req.Amount.GreaterThan(s.cfg.HighAmount) {
		score += 0.2
	}

	if req.PaymentMethod == models.MethodCrypto {
		score += 0.3
	}

	hour := s.now().Hour()
	if hour < s.cfg.NightHourEnd || hour > s.cfg.NightHourStart {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
