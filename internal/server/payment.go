package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/gymdesk/internal/payment/domain"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	maxWebhookBody  = 1 << 20
)

type recordPaymentRequest struct {
	MemberID    string   `json:"memberId"`
	TotalAmount *float64 `json:"totalAmount"`
	PaidAmount  *float64 `json:"paidAmount"`
	Method      string   `json:"method"`
	Notes       string   `json:"notes"`
}

type checkoutRequest struct {
	Amount   float64 `json:"amount"`
	MemberID string  `json:"memberId"`
}

// verifyPaymentRequest uses the field names the hosted checkout hands back
// to the browser.
type verifyPaymentRequest struct {
	OrderID     string   `json:"razorpay_order_id"`
	PaymentID   string   `json:"razorpay_payment_id"`
	Signature   string   `json:"razorpay_signature"`
	TotalAmount *float64 `json:"totalAmount"`
	PaidAmount  *float64 `json:"paidAmount"`
}

func (s *Server) ListPayments(c *gin.Context) {
	payments, err := s.paymentSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func (s *Server) RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	payment, err := s.paymentSvc.RecordManualPayment(c.Request.Context(), paymentdomain.RecordPaymentRequest{
		MemberID:    strings.TrimSpace(req.MemberID),
		TotalAmount: req.TotalAmount,
		PaidAmount:  req.PaidAmount,
		Method:      strings.TrimSpace(req.Method),
		Notes:       req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": payment})
}

func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.paymentSvc.InitiateGatewayOrder(c.Request.Context(), paymentdomain.CheckoutRequest{
		Amount:   req.Amount,
		MemberID: strings.TrimSpace(req.MemberID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order": order,
		"keyId": s.cfg.Gateway.KeyID,
	}})
}

func (s *Server) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.paymentSvc.VerifyAndRecordGatewayPayment(c.Request.Context(), paymentdomain.VerifyRequest{
		OrderID:     req.OrderID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		TotalAmount: req.TotalAmount,
		PaidAmount:  req.PaidAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if result.AlreadyRecorded {
		c.JSON(http.StatusOK, gin.H{"message": "Already recorded", "data": result.Payment})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Payment verified", "data": result.Payment})
}

// HandlePaymentWebhook must see the body exactly as sent; the signature is
// computed over the raw bytes.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	outcome, err := s.paymentSvc.HandleGatewayWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

func (s *Server) ListPendingDues(c *gin.Context) {
	dues, err := s.paymentSvc.ListPendingDues(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dues})
}
