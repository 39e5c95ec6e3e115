package handler

import (
	ledgerapp "github.com/edutrack/backend/internal/application/ledger"
	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SettingsHandler handles school configuration API endpoints
type SettingsHandler struct {
	BaseHandler
	settings *ledgerapp.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *ledgerapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// UpdateSchoolInfoRequest represents a request to change the school identity
type UpdateSchoolInfoRequest struct {
	SchoolName string `json:"school_name" binding:"omitempty,min=1,max=200"`
	Currency   string `json:"currency" binding:"omitempty,min=1,max=10"`
}

// AddFeeItemRequest represents a request to add a fee item to the catalog
type AddFeeItemRequest struct {
	Key           string          `json:"key" binding:"required,feekey"`
	Label         string          `json:"label" binding:"required,min=1,max=200"`
	Category      string          `json:"category" binding:"omitempty,oneof=tuition mandatory optional misc"`
	DefaultAmount decimal.Decimal `json:"default_amount"`
}

// UpdateFeeAmountRequest represents a request to set one grade's fee amount.
// Negative amounts are allowed and act as discounts.
type UpdateFeeAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Get returns the current school configuration
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.GetSettings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// UpdateSchoolInfo changes the school's display identity
func (h *SettingsHandler) UpdateSchoolInfo(c *gin.Context) {
	var req UpdateSchoolInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settings.UpdateSchoolInfo(c.Request.Context(), ledgerapp.UpdateSchoolInfoRequest{
		SchoolName: req.SchoolName,
		Currency:   req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// AddFeeItem adds a fee item to the catalog and every grade's structure
func (h *SettingsHandler) AddFeeItem(c *gin.Context) {
	var req AddFeeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settings.AddFeeItem(c.Request.Context(), ledgerapp.AddFeeItemRequest{
		Key:           req.Key,
		Label:         req.Label,
		Category:      ledger.FeeCategory(req.Category),
		DefaultAmount: req.DefaultAmount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, settings)
}

// DeleteFeeItem removes a fee item from the catalog and every structure
func (h *SettingsHandler) DeleteFeeItem(c *gin.Context) {
	key, err := ledger.ParseFeeKey(c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	settings, err := h.settings.DeleteFeeItem(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// UpdateFeeAmount sets one grade's amount for a fee key
func (h *SettingsHandler) UpdateFeeAmount(c *gin.Context) {
	grade := c.Param("grade")
	key, err := ledger.ParseFeeKey(c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdateFeeAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	settings, err := h.settings.UpdateFeeAmount(c.Request.Context(), grade, key, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, settings)
}

// RegisterRoutes registers settings routes
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("/school", h.UpdateSchoolInfo)
		settings.POST("/fee-items", h.AddFeeItem)
		settings.DELETE("/fee-items/:key", h.DeleteFeeItem)
		settings.PUT("/structures/:grade/:key", h.UpdateFeeAmount)
	}
}
