package handler

import (
	ledgerapp "github.com/edutrack/backend/internal/application/ledger"
	"github.com/edutrack/backend/internal/domain/ledger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// StudentHandler handles roster API endpoints
type StudentHandler struct {
	BaseHandler
	students *ledgerapp.StudentService
	payments *ledgerapp.PaymentService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(students *ledgerapp.StudentService, payments *ledgerapp.PaymentService) *StudentHandler {
	return &StudentHandler{students: students, payments: payments}
}

// RegisterStudentRequest represents a request to add a student to the roster
type RegisterStudentRequest struct {
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	AdmissionNo     string          `json:"admission_no" binding:"max=50"`
	Grade           string          `json:"grade" binding:"required,min=1,max=50"`
	Category        string          `json:"category" binding:"omitempty,oneof=normal staff sponsored"`
	SelectedFees    []string        `json:"selected_fees" binding:"omitempty,dive,feekey"`
	PreviousArrears decimal.Decimal `json:"previous_arrears"`
}

// UpdateStudentRequest represents a request to edit a student's details
type UpdateStudentRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	AdmissionNo string `json:"admission_no" binding:"max=50"`
	Category    string `json:"category" binding:"omitempty,oneof=normal staff sponsored"`
}

// ToggleFeeRequest represents a request to flip one fee selection
type ToggleFeeRequest struct {
	Key string `json:"key" binding:"required,feekey"`
}

// Register adds a student to the roster
func (h *StudentHandler) Register(c *gin.Context) {
	var req RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.students.RegisterStudent(c.Request.Context(), ledgerapp.RegisterStudentRequest{
		Name:            req.Name,
		AdmissionNo:     req.AdmissionNo,
		Grade:           req.Grade,
		Category:        ledger.StudentCategory(req.Category),
		SelectedFees:    toFeeKeys(req.SelectedFees),
		PreviousArrears: req.PreviousArrears,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, student)
}

// Get returns one student with live financials
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	student, err := h.students.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// List returns the roster, optionally filtered by grade
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.ListStudents(c.Request.Context(), c.Query("grade"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, students)
}

// Update edits a student's descriptive details
func (h *StudentHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.students.UpdateStudent(c.Request.Context(), id, ledgerapp.UpdateStudentRequest{
		Name:        req.Name,
		AdmissionNo: req.AdmissionNo,
		Category:    ledger.StudentCategory(req.Category),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// Delete removes a student and the student's active payments
func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.students.RemoveStudent(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ToggleFee flips one fee key in the student's selection
func (h *StudentHandler) ToggleFee(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req ToggleFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	student, err := h.students.ToggleFee(c.Request.Context(), id, ledger.FeeKey(req.Key))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// Promote moves a student to the next grade, carrying the outstanding balance
func (h *StudentHandler) Promote(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	student, err := h.students.Promote(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// Payments returns one student's payment history in ledger order
func (h *StudentHandler) Payments(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	payments, err := h.payments.ListStudentPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RegisterRoutes registers student routes
func (h *StudentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	students := rg.Group("/students")
	{
		students.POST("", h.Register)
		students.GET("", h.List)
		students.GET("/:id", h.Get)
		students.PUT("/:id", h.Update)
		students.DELETE("/:id", h.Delete)
		students.POST("/:id/toggle-fee", h.ToggleFee)
		students.POST("/:id/promote", h.Promote)
		students.GET("/:id/payments", h.Payments)
	}
}

func toFeeKeys(raw []string) []ledger.FeeKey {
	if len(raw) == 0 {
		return nil
	}
	keys := make([]ledger.FeeKey, len(raw))
	for i, r := range raw {
		keys[i] = ledger.FeeKey(r)
	}
	return keys
}
