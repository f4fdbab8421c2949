package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/middleware"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	telemetry.Logger = zap.NewNop()
	m.Run()
}

// stubService returns canned responses regardless of input.
type stubService struct {
	processResp *models.PaymentResponse
	lookupResp  *models.PaymentResponse
	refundResp  *models.PaymentResponse
	captureResp *models.PaymentResponse
	cancelResp  *models.PaymentResponse
	userList    []models.PaymentResponse
	userErr     error

	processCalls int
}

func (s *stubService) ProcessPayment(_ context.Context, _ *models.PaymentRequest) *models.PaymentResponse {
	s.processCalls++
	return s.processResp
}

func (s *stubService) GetPaymentByTransactionID(_ context.Context, _ string) *models.PaymentResponse {
	return s.lookupResp
}

func (s *stubService) GetPaymentsByUserID(_ context.Context, _ int64, _ models.PaymentStatus) ([]models.PaymentResponse, error) {
	return s.userList, s.userErr
}

func (s *stubService) RefundPayment(_ context.Context, _ string) *models.PaymentResponse {
	return s.refundResp
}

func (s *stubService) CapturePayment(_ context.Context, _ string) *models.PaymentResponse {
	return s.captureResp
}

func (s *stubService) CancelPayment(_ context.Context, _ string) *models.PaymentResponse {
	return s.cancelResp
}

// mapCache is an in-memory Cache for handler tests.
type mapCache struct {
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (m *mapCache) Get(_ context.Context, key string, dest any) bool {
	raw, ok := m.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	raw, _ := json.Marshal(value)
	m.entries[key] = raw
}

func (m *mapCache) Delete(_ context.Context, key string) {
	delete(m.entries, key)
}

func (m *mapCache) Exists(_ context.Context, key string) bool {
	_, ok := m.entries[key]
	return ok
}

func newRouter(svc *stubService, cache *mapCache) *gin.Engine {
	h := NewPaymentHandler(svc, cache)

	r := gin.New()
	payments := r.Group("/api/v1/payments")
	payments.POST("/process", middleware.Idempotency(cache), h.ProcessPayment)
	payments.GET("/:transactionId", h.GetPayment)
	payments.GET("/user/:userId", h.GetUserPayments)
	payments.POST("/:transactionId/refund", h.RefundPayment)
	payments.POST("/:transactionId/capture", h.CapturePayment)
	payments.POST("/:transactionId/cancel", h.CancelPayment)
	return r
}

func validBody(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(models.PaymentRequest{
		UserID:        42,
		Amount:        decimal.NewFromFloat(99.99),
		Currency:      "USD",
		PaymentMethod: models.MethodWallet,
		MerchantID:    "M1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestStatusCodeFor(t *testing.T) {
	cases := []struct {
		kind models.ErrorKind
		want int
	}{
		{models.KindNone, http.StatusOK},
		{models.KindClient, http.StatusBadRequest},
		{models.KindGateway, http.StatusBadRequest},
		{models.KindSecurity, http.StatusForbidden},
		{models.KindNotFound, http.StatusNotFound},
		{models.KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusCodeFor(tc.kind); got != tc.want {
			t.Errorf("statusCodeFor(%q) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestProcessPaymentResponseCodes(t *testing.T) {
	cases := []struct {
		name string
		resp *models.PaymentResponse
		want int
	}{
		{"settled", models.SuccessResponse("TXN_A", models.StatusSettled, "Payment settled successfully"), http.StatusOK},
		{"risk rejection", models.ErrorResponse("TXN_B", models.KindSecurity, "Transaction flagged as fraudulent"), http.StatusForbidden},
		{"gateway decline", models.ErrorResponse("TXN_C", models.KindGateway, "Card declined by issuer"), http.StatusBadRequest},
		{"bad currency", models.ErrorResponse("TXN_D", models.KindClient, "Unsupported currency"), http.StatusBadRequest},
		{"storage failure", models.ErrorResponse("TXN_E", models.KindInternal, "Payment processing failed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{processResp: tc.resp}
			r := newRouter(svc, newMapCache())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/process", bytes.NewReader(validBody(t)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d; body %s", w.Code, tc.want, w.Body.String())
			}

			var got models.PaymentResponse
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid response body: %v", err)
			}
			if got.ErrorCode != tc.resp.ErrorCode {
				t.Errorf("error_code = %q, want %q", got.ErrorCode, tc.resp.ErrorCode)
			}
		})
	}
}

func TestProcessPaymentRejectsMalformedBody(t *testing.T) {
	svc := &stubService{processResp: models.SuccessResponse("TXN_A", models.StatusSettled, "ok")}
	r := newRouter(svc, newMapCache())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/process", bytes.NewReader([]byte(`{"user_id": 42}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if svc.processCalls != 0 {
		t.Error("service must not be called for a malformed body")
	}
}

func TestIdempotencyReplay(t *testing.T) {
	svc := &stubService{
		processResp: models.SuccessResponse("TXN_REPLAY", models.StatusSettled, "Payment settled successfully"),
	}
	cache := newMapCache()
	r := newRouter(svc, cache)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/process", bytes.NewReader(validBody(t)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "key-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}
	if svc.processCalls != 1 {
		t.Fatalf("processCalls = %d after first request, want 1", svc.processCalls)
	}

	second := send()
	if second.Code != http.StatusOK {
		t.Fatalf("replay status = %d, want 200", second.Code)
	}
	if svc.processCalls != 1 {
		t.Errorf("processCalls = %d after replay, want still 1", svc.processCalls)
	}

	var got models.PaymentResponse
	if err := json.Unmarshal(second.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.TransactionID != "TXN_REPLAY" {
		t.Errorf("replayed transaction_id = %q, want TXN_REPLAY", got.TransactionID)
	}
}

func TestFailedPaymentIsNotRecordedForReplay(t *testing.T) {
	svc := &stubService{
		processResp: models.ErrorResponse("TXN_F", models.KindGateway, "Card declined by issuer"),
	}
	cache := newMapCache()
	r := newRouter(svc, cache)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/process", bytes.NewReader(validBody(t)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "key-456")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}

	if svc.processCalls != 2 {
		t.Errorf("processCalls = %d, want 2; declines must not replay", svc.processCalls)
	}
}

func TestGetPayment(t *testing.T) {
	svc := &stubService{
		lookupResp: models.ErrorResponse("TXN_MISSING", models.KindNotFound, "Payment not found"),
	}
	r := newRouter(svc, newMapCache())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/TXN_MISSING", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetUserPayments(t *testing.T) {
	svc := &stubService{
		userList: []models.PaymentResponse{
			{TransactionID: "TXN_1", Status: models.StatusSettled},
			{TransactionID: "TXN_2", Status: models.StatusFailed},
		},
	}
	r := newRouter(svc, newMapCache())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/user/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []models.PaymentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d payments, want 2", len(got))
	}
}

func TestGetUserPaymentsInvalidID(t *testing.T) {
	r := newRouter(&stubService{}, newMapCache())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/user/not-a-number", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLifecycleEndpoints(t *testing.T) {
	svc := &stubService{
		refundResp:  models.SuccessResponse("TXN_R", models.StatusRefunded, "Refund processed successfully"),
		captureResp: models.ErrorResponse("TXN_C", models.KindClient, "Payment cannot be captured in its current state"),
		cancelResp:  models.ErrorResponse("TXN_X", models.KindNotFound, "Payment not found"),
	}
	r := newRouter(svc, newMapCache())

	cases := []struct {
		path string
		want int
	}{
		{"/api/v1/payments/TXN_R/refund", http.StatusOK},
		{"/api/v1/payments/TXN_C/capture", http.StatusBadRequest},
		{"/api/v1/payments/TXN_X/cancel", http.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, tc.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("POST %s status = %d, want %d", tc.path, w.Code, tc.want)
		}
	}
}
