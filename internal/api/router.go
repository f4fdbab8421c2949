package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shibam-max/payment-processing-platform/internal/handlers"
	"github.com/shibam-max/payment-processing-platform/internal/interfaces"
	"github.com/shibam-max/payment-processing-platform/internal/middleware"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

func NewRouter(service interfaces.PaymentService, merchants interfaces.MerchantRepository, reporter interfaces.PaymentReporter, cache interfaces.Cache) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payment-engine"})
	})

	paymentHandler := handlers.NewPaymentHandler(service, cache)
	merchantHandler := handlers.NewMerchantHandler(merchants, reporter)

	v1 := r.Group("/api/v1")

	payments := v1.Group("/payments")
	{
		payments.POST("/process", middleware.Idempotency(cache), paymentHandler.ProcessPayment)
		payments.GET("/:transactionId", paymentHandler.GetPayment)
		payments.GET("/user/:userId", paymentHandler.GetUserPayments)
		payments.POST("/:transactionId/refund", paymentHandler.RefundPayment)
		payments.POST("/:transactionId/capture", paymentHandler.CapturePayment)
		payments.POST("/:transactionId/cancel", paymentHandler.CancelPayment)
	}

	merchantsGroup := v1.Group("/merchants")
	{
		merchantsGroup.GET("", merchantHandler.GetActiveMerchants)
		merchantsGroup.GET("/:merchantId", merchantHandler.GetMerchant)
		merchantsGroup.GET("/:merchantId/payments", merchantHandler.GetMerchantPayments)
		merchantsGroup.GET("/:merchantId/volume", merchantHandler.GetMerchantVolume)
		merchantsGroup.GET("/country/:country", merchantHandler.GetMerchantsByCountry)
	}

	return r
}
