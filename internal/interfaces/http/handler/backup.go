package handler

import (
	ledgerapp "github.com/edutrack/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// BackupHandler handles full-dataset export and restore endpoints
type BackupHandler struct {
	BaseHandler
	backups *ledgerapp.BackupService
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backups *ledgerapp.BackupService) *BackupHandler {
	return &BackupHandler{backups: backups}
}

// ImportBackupRequest wraps a backup document with the sections to restore
type ImportBackupRequest struct {
	Document *ledgerapp.BackupDocument `json:"document" binding:"required"`
	Sections ledgerapp.BackupSections  `json:"sections"`
}

// Export returns the complete dataset as a backup document
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backups.ExportBackup(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Import restores the selected sections of a backup document
func (h *BackupHandler) Import(c *gin.Context) {
	var req ImportBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.backups.ImportBackup(c.Request.Context(), req.Document, req.Sections); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers backup routes
func (h *BackupHandler) RegisterRoutes(rg *gin.RouterGroup) {
	backup := rg.Group("/backup")
	{
		backup.GET("/export", h.Export)
		backup.POST("/import", h.Import)
	}
}
