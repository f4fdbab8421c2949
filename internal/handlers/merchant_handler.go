package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shibam-max/payment-processing-platform/internal/interfaces"
	"github.com/shibam-max/payment-processing-platform/internal/models"
	"github.com/shibam-max/payment-processing-platform/internal/telemetry"
)

type MerchantHandler struct {
	merchants interfaces.MerchantRepository
	payments  interfaces.PaymentReporter
}

func NewMerchantHandler(merchants interfaces.MerchantRepository, payments interfaces.PaymentReporter) *MerchantHandler {
	return &MerchantHandler{merchants: merchants, payments: payments}
}

func (h *MerchantHandler) GetMerchant(c *gin.Context) {
	merchantID := c.Param("merchantId")

	merchant, err := h.merchants.FindByMerchantID(c.Request.Context(), merchantID)
	if err != nil {
		telemetry.Logger.Error("Merchant lookup failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch merchant"})
		return
	}
	if merchant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Merchant not found"})
		return
	}

	c.JSON(http.StatusOK, merchant)
}

func (h *MerchantHandler) GetActiveMerchants(c *gin.Context) {
	merchants, err := h.merchants.FindActive(c.Request.Context())
	if err != nil {
		telemetry.Logger.Error("Merchant list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch merchants"})
		return
	}

	c.JSON(http.StatusOK, merchants)
}

func (h *MerchantHandler) GetMerchantPayments(c *gin.Context) {
	merchantID := c.Param("merchantId")

	payments, err := h.payments.FindByMerchantID(c.Request.Context(), merchantID)
	if err != nil {
		telemetry.Logger.Error("Merchant payments lookup failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}

// GetMerchantVolume reports the merchant's total settled amount.
func (h *MerchantHandler) GetMerchantVolume(c *gin.Context) {
	merchantID := c.Param("merchantId")

	total, err := h.payments.TotalAmountByMerchantAndStatus(c.Request.Context(), merchantID, models.StatusSettled)
	if err != nil {
		telemetry.Logger.Error("Merchant volume lookup failed",
			zap.String("merchant_id", merchantID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settled volume"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchant_id":    merchantID,
		"status":         models.StatusSettled,
		"settled_volume": total,
	})
}

func (h *MerchantHandler) GetMerchantsByCountry(c *gin.Context) {
	country := c.Param("country")

	merchants, err := h.merchants.FindByCountry(c.Request.Context(), country)
	if err != nil {
		telemetry.Logger.Error("Merchant list failed",
			zap.String("country", country),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch merchants"})
		return
	}

	c.JSON(http.StatusOK, merchants)
}
