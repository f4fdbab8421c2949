package orchestrator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shibam-max/payment-processing-platform/internal/gateway"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/repository"
)

type fakePaymentRepo struct {
	mu          sync.Mutex
	payments    map[string]*models.Payment
	recentCount int64
	saveErr     error
	findErr     error
	countErr    error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *models.Payment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = int64(len(r.payments) + 1)
	stored := *payment
	r.payments[payment.TransactionID] = &stored
	return nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, transactionID string, from, to models.PaymentStatus, gatewayResponse string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[transactionID]
	if !ok || p.Status != from {
		return repository.ErrStatusConflict
	}
	p.Status = to
	p.GatewayResponse = gatewayResponse
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakePaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*models.Payment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[transactionID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) FindByUserID(_ context.Context, userID int64) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindByUserIDAndStatus(_ context.Context, userID int64, status models.PaymentStatus) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Payment
	for _, p := range r.payments {
		if p.UserID == userID && p.Status == status {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) CountRecentByUser(_ context.Context, _ int64, _ time.Time) (int64, error) {
	return r.recentCount, r.countErr
}

func (r *fakePaymentRepo) ExistsByTransactionID(_ context.Context, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.payments[transactionID]
	return ok, nil
}

func (r *fakePaymentRepo) stored(transactionID string) *models.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[transactionID]
}

func (r *fakePaymentRepo) seed(p *models.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *p
	r.payments[p.TransactionID] = &stored
}

type fakeMerchantRepo struct {
	active map[string]bool
}

func (r *fakeMerchantRepo) FindByMerchantID(_ context.Context, merchantID string) (*models.Merchant, error) {
	if _, ok := r.active[merchantID]; !ok {
		return nil, nil
	}
	return &models.Merchant{MerchantID: merchantID, IsActive: r.active[merchantID]}, nil
}

func (r *fakeMerchantRepo) FindActive(_ context.Context) ([]models.Merchant, error) {
	return nil, nil
}

func (r *fakeMerchantRepo) FindByCountry(_ context.Context, _ string) ([]models.Merchant, error) {
	return nil, nil
}

func (r *fakeMerchantRepo) IsActiveMerchant(_ context.Context, merchantID string) (bool, error) {
	return r.active[merchantID], nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
}

func (c *fakeCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *fakeCache) Exists(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type fakeGateway struct {
	authorizeResult gateway.Result
	captureResult   gateway.Result
	cancelResult    gateway.Result
	refundResult    gateway.Result

	authorizeCalls int
	captureCalls   int
	cancelCalls    int
	refundCalls    int
}

func (g *fakeGateway) AuthorizeOrSettle(_ context.Context, _ *models.Payment) gateway.Result {
	g.authorizeCalls++
	return g.authorizeResult
}

func (g *fakeGateway) Capture(_ context.Context, _ *models.Payment) gateway.Result {
	g.captureCalls++
	return g.captureResult
}

func (g *fakeGateway) Cancel(_ context.Context, _ *models.Payment) gateway.Result {
	g.cancelCalls++
	return g.cancelResult
}

func (g *fakeGateway) Refund(_ context.Context, _ *models.Payment) gateway.Result {
	g.refundCalls++
	return g.refundResult
}

type fakeAudit struct {
	created       int
	statusChanged int
	refunds       int
	fraud         int
	lastReason    string
}

func (a *fakeAudit) PaymentCreated(_ context.Context, _ *models.Payment) { a.created++ }

func (a *fakeAudit) PaymentStatusChanged(_ context.Context, _ *models.Payment, _, _ models.PaymentStatus) {
	a.statusChanged++
}

func (a *fakeAudit) RefundProcessed(_ context.Context, _ *models.Payment) { a.refunds++ }

func (a *fakeAudit) FraudDetected(_ context.Context, _, reason string) {
	a.fraud++
	a.lastReason = reason
}

type fakeNotifier struct {
	payments int
	refunds  int
}

func (n *fakeNotifier) PaymentNotification(_ context.Context, _ *models.Payment) { n.payments++ }
func (n *fakeNotifier) RefundNotification(_ context.Context, _ *models.Payment)  { n.refunds++ }

type fakeAlerter struct {
	alerts     int
	lastReason string
}

func (a *fakeAlerter) FraudAlert(_ context.Context, _, reason string) {
	a.alerts++
	a.lastReason = reason
}
