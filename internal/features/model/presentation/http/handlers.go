package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"mierio/backend/internal/config"
	"mierio/backend/internal/features/model/application"
	"mierio/backend/internal/features/model/domain"
	"mierio/backend/internal/session"
)

// ModelHandler holds the model service and the workspace store.
type ModelHandler struct {
	modelService application.ModelService
	workspaces   session.Workspaces
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(modelService application.ModelService, workspaces session.Workspaces) *ModelHandler {
	return &ModelHandler{
		modelService: modelService,
		workspaces:   workspaces,
	}
}

// EvaluateRequest carries an explicit configuration and one row of feature values.
type EvaluateRequest struct {
	Configuration domain.ModelConfiguration `json:"configuration"`
	FeatureValues domain.FeatureValues      `json:"feature_values"`
}

// LoadModelRequest names a saved configuration file.
type LoadModelRequest struct {
	Filename string `json:"filename"`
}

// EvaluateHandler evaluates the configuration of the request body.
func (h *ModelHandler) EvaluateHandler(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.modelService.Evaluate(&req.Configuration, req.FeatureValues)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":   jsonNumbers(results),
		"equations": domain.DescribeEquations(&req.Configuration),
	})
}

// SaveModelConfigHandler saves the model tab against the workspace's CSV files.
func (h *ModelHandler) SaveModelConfigHandler(c *gin.Context) {
	var req application.SaveModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	filename, err := h.modelService.SaveModel(&req, tablesOf(ws))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "Failed to save model configuration: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Model configuration saved successfully: " + filename, "filename": filename})
}

// ListModelConfigsHandler lists the saved configuration files.
func (h *ModelHandler) ListModelConfigsHandler(c *gin.Context) {
	configs, err := h.modelService.ListModels()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list model configurations: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// LoadModelConfigHandler loads a saved configuration into the workspace.
func (h *ModelHandler) LoadModelConfigHandler(c *gin.Context) {
	var req LoadModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No JSON file name provided."})
		return
	}

	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	loaded, err := h.modelService.LoadModel(req.Filename, tablesOf(ws))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ws.LoadedModel = req.Filename
	if err := h.workspaces.Save(c.Request.Context(), ws); err != nil {
		slog.Error("failed to save workspace", "workspace", ws.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remember loaded model: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Configuration loaded successfully.",
		"model_name":     loaded.ModelName,
		"fitting_config": loaded.FittingConfig,
		"fitting_method": loaded.FittingMethod,
		"functions":      loaded.Functions,
		"equations":      loaded.Equations,
	})
}

// RunCalculationDemoHandler evaluates the loaded model against the first feature row.
func (h *ModelHandler) RunCalculationDemoHandler(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	demo, err := h.modelService.RunDemo(ws.LoadedModel, tablesOf(ws))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "An error occurred during the calculation demo: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Calculation demo completed successfully.",
		"inputs":    jsonNumbers(demo.Inputs),
		"results":   jsonNumbers(demo.Results),
		"actual":    demo.Actual,
		"equations": demo.Equations,
	})
}

func (h *ModelHandler) workspace(c *gin.Context) (*session.Workspace, bool) {
	ws, err := h.workspaces.Get(c.Request.Context(), session.WorkspaceID(c))
	if err != nil {
		slog.Error("failed to load workspace", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workspace: " + err.Error()})
		return nil, false
	}
	return ws, true
}

func tablesOf(ws *session.Workspace) application.Tables {
	return application.Tables{
		FeaturePath:    ws.FeaturePath,
		TargetPath:     ws.TargetPath,
		FeatureHeaders: ws.FeatureHeaders,
		TargetHeaders:  ws.TargetHeaders,
	}
}

func statusFor(err error) int {
	var evalErr *domain.EvaluationError
	switch {
	case errors.Is(err, config.ErrModelConfigNotFound):
		return http.StatusNotFound
	case errors.As(err, &evalErr),
		errors.Is(err, domain.ErrInvalidConfiguration),
		errors.Is(err, application.ErrTablesNotLoaded),
		errors.Is(err, application.ErrCSVMismatch),
		errors.Is(err, application.ErrNoModelLoaded):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// jsonNumbers encodes non-finite values as strings, which JSON cannot carry.
func jsonNumbers[M ~map[string]float64](values M) map[string]any {
	out := make(map[string]any, len(values))
	for name, v := range values {
		switch {
		case math.IsNaN(v):
			out[name] = "NaN"
		case math.IsInf(v, 1):
			out[name] = "+Inf"
		case math.IsInf(v, -1):
			out[name] = "-Inf"
		default:
			out[name] = v
		}
	}
	return out
}
