package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/interfaces"
	"github.com/shibam-max/payment-processing-platform/internal/middleware"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

const idempotencyReplayTTL = 24 * time.Hour

type PaymentHandler struct {
	service interfaces.PaymentService
	cache   interfaces.Cache
}

func NewPaymentHandler(service interfaces.PaymentService, cache interfaces.Cache) *PaymentHandler {
	return &PaymentHandler{service: service, cache: cache}
}

// statusCodeFor maps the typed failure classification to an HTTP status.
// Branching happens on the kind value, never on message text.
func statusCodeFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindNone:
		return http.StatusOK
	case models.KindClient, models.KindGateway:
		return http.StatusBadRequest
	case models.KindSecurity:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Warn("Invalid payment request", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse("", models.KindClient, err.Error()))
		return
	}

	resp := h.service.ProcessPayment(ctx, &req)

	if resp.Kind() == models.KindNone {
		if key := c.GetString(middleware.ContextKey); key != "" {
			h.cache.Set(ctx, middleware.ReplayKey(key), resp, idempotencyReplayTTL)
		}
	}

	c.JSON(statusCodeFor(resp.Kind()), resp)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	transactionID := c.Param("transactionId")

	resp := h.service.GetPaymentByTransactionID(c.Request.Context(), transactionID)
	c.JSON(statusCodeFor(resp.Kind()), resp)
}

func (h *PaymentHandler) GetUserPayments(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	status := models.PaymentStatus(c.Query("status"))

	payments, err := h.service.GetPaymentsByUserID(c.Request.Context(), userID, status)
	if err != nil {
		telemetry.Logger.Error("Failed to fetch user payments",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	transactionID := c.Param("transactionId")

	resp := h.service.RefundPayment(c.Request.Context(), transactionID)
	c.JSON(statusCodeFor(resp.Kind()), resp)
}

func (h *PaymentHandler) CapturePayment(c *gin.Context) {
	transactionID := c.Param("transactionId")

	resp := h.service.CapturePayment(c.Request.Context(), transactionID)
	c.JSON(statusCodeFor(resp.Kind()), resp)
}

func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	transactionID := c.Param("transactionId")

	resp := h.service.CancelPayment(c.Request.Context(), transactionID)
	c.JSON(statusCodeFor(resp.Kind()), resp)
}
