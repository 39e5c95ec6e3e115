package handler

import (
	ledgerapp "github.com/edutrack/backend/internal/application/ledger"
	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment ledger API endpoints
type PaymentHandler struct {
	BaseHandler
	payments *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPaymentRequest represents a request to record an itemized payment.
// Item keys are free-form here; the reserved arrears key is accepted and
// the domain drops non-positive entries.
type RecordPaymentRequest struct {
	StudentID uuid.UUID                  `json:"student_id" binding:"required"`
	Term      string                     `json:"term" binding:"required,oneof=T1 T2 T3"`
	Items     map[string]decimal.Decimal `json:"items" binding:"required"`
}

// Record appends a payment and returns the printable receipt snapshot
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items := make(map[ledger.FeeKey]decimal.Decimal, len(req.Items))
	for key, amount := range req.Items {
		items[ledger.FeeKey(key)] = amount
	}

	receipt, err := h.payments.RecordPayment(c.Request.Context(), ledgerapp.RecordPaymentRequest{
		StudentID: req.StudentID,
		Term:      ledger.Term(req.Term),
		Items:     items,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// List returns the full active ledger in order of entry
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.payments.ListPayments(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Receipt reconstructs the receipt snapshot for a past payment
func (h *PaymentHandler) Receipt(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	receipt, err := h.payments.ViewReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// Void removes a payment from the ledger entirely
func (h *PaymentHandler) Void(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.payments.VoidPayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Record)
		payments.GET("", h.List)
		payments.GET("/:id/receipt", h.Receipt)
		payments.DELETE("/:id", h.Void)
	}
}
