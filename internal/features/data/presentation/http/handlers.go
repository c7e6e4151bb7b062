package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"mierio/backend/internal/features/data/application"
	"mierio/backend/internal/features/data/domain"
	"mierio/backend/internal/session"
)

// DataHandler holds the data service and the workspace store.
type DataHandler struct {
	dataService application.DataService
	workspaces  session.Workspaces
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(dataService application.DataService, workspaces session.Workspaces) *DataHandler {
	return &DataHandler{
		dataService: dataService,
		workspaces:  workspaces,
	}
}

// UploadCSVHandler stores a feature or target CSV and records it in the workspace.
func (h *DataHandler) UploadCSVHandler(c *gin.Context) {
	kind := c.PostForm("file_type")
	if kind != application.KindFeature && kind != application.KindTarget {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type specified."})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	ws, err := h.workspaces.Get(c.Request.Context(), session.WorkspaceID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace: " + err.Error()})
		return
	}

	res, err := h.dataService.Upload(kind, header.Filename, file)
	if errors.Is(err, application.ErrInvalidUpload) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		ws.ClearTable(kind)
		if saveErr := h.workspaces.Save(c.Request.Context(), ws); saveErr != nil {
			slog.Error("failed to save workspace", "workspace", ws.ID, "error", saveErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ws.SetTable(kind, res.Filepath, res.Headers)
	if err := h.workspaces.Save(c.Request.Context(), ws); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save workspace: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// ModelTableHeadersHandler returns the feature and target headers of the workspace.
func (h *DataHandler) ModelTableHeadersHandler(c *gin.Context) {
	ws, err := h.workspaces.Get(c.Request.Context(), session.WorkspaceID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace: " + err.Error()})
		return
	}

	features := (&domain.Table{Headers: ws.FeatureHeaders}).ModelHeaders()
	targets := (&domain.Table{Headers: ws.TargetHeaders}).ModelHeaders()
	if len(features) == 0 || len(targets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feature or Target CSV headers not available. Please upload files."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feature_headers": features, "target_headers": targets})
}

// PlotDataHandler returns the scatter series selected in the view tab.
func (h *DataHandler) PlotDataHandler(c *gin.Context) {
	var req domain.PlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, err := h.workspaces.Get(c.Request.Context(), session.WorkspaceID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace: " + err.Error()})
		return
	}
	if !ws.HasTables() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feature or Target CSV file not uploaded."})
		return
	}

	data, err := h.dataService.PlotData(ws.FeaturePath, ws.TargetPath, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}
