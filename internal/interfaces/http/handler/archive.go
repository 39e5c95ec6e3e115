package handler

import (
	ledgerapp "github.com/edutrack/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// ArchiveHandler handles end-of-year archive API endpoints
type ArchiveHandler struct {
	BaseHandler
	archives *ledgerapp.ArchiveService
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archives *ledgerapp.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archives: archives}
}

// ArchiveYearRequest represents a request to close the current academic year
type ArchiveYearRequest struct {
	NextAcademicYear string `json:"next_academic_year" binding:"required,min=1,max=20"`
}

// Create snapshots the current year and advances to the next one
func (h *ArchiveHandler) Create(c *gin.Context) {
	var req ArchiveYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.archives.ArchiveYear(c.Request.Context(), req.NextAcademicYear)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, summary)
}

// List returns summaries of every archived year
func (h *ArchiveHandler) List(c *gin.Context) {
	archives, err := h.archives.ListArchives(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, archives)
}

// Get returns the full snapshot for one archived year
func (h *ArchiveHandler) Get(c *gin.Context) {
	archive, err := h.archives.GetArchive(c.Request.Context(), c.Param("year"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, archive)
}

// RegisterRoutes registers archive routes
func (h *ArchiveHandler) RegisterRoutes(rg *gin.RouterGroup) {
	archives := rg.Group("/archives")
	{
		archives.POST("", h.Create)
		archives.GET("", h.List)
		archives.GET("/:year", h.Get)
	}
}
