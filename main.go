package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"mierio/backend/internal/config"
	"mierio/backend/internal/features/data/application"
	datainfra "mierio/backend/internal/features/data/infrastructure"
	data_http "mierio/backend/internal/features/data/presentation/http"
	modelapp "mierio/backend/internal/features/model/application"
	"mierio/backend/internal/features/model/infrastructure"
	model_http "mierio/backend/internal/features/model/presentation/http"
	"mierio/backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// workspaceRetention is how long an idle workspace is kept.
const workspaceRetention = 30 * 24 * time.Hour

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	workspaces, err := session.Open(settings.DBPath)
	if err != nil {
		slog.Error("failed to open workspace database", "path", settings.DBPath, "error", err)
		os.Exit(1)
	}
	defer workspaces.Close()
	if n, err := workspaces.Prune(context.Background(), time.Now().Add(-workspaceRetention)); err != nil {
		slog.Warn("failed to prune workspaces", "error", err)
	} else if n > 0 {
		slog.Info("pruned idle workspaces", "count", n)
	}

	// Initialize services
	tableReader := datainfra.NewCSVReader()
	dataService := application.NewDataService(settings.UploadDir, tableReader)
	modelStore := config.NewModelConfigStore(settings.ModelDir)
	modelService := modelapp.NewModelService(infrastructure.NewExprEngine(), modelStore, tableReader)

	r := gin.Default()
	r.Use(session.Middleware(settings.SessionCookie))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Data routes
	dataHandler := data_http.NewDataHandler(dataService, workspaces)
	r.POST("/upload_csv", dataHandler.UploadCSVHandler)
	r.GET("/get_model_table_headers", dataHandler.ModelTableHeadersHandler)
	r.POST("/get_plot_data", dataHandler.PlotDataHandler)

	// Model routes
	modelHandler := model_http.NewModelHandler(modelService, workspaces)
	r.POST("/save_model_config", modelHandler.SaveModelConfigHandler)
	r.GET("/model_configs", modelHandler.ListModelConfigsHandler)
	r.POST("/load_model_config", modelHandler.LoadModelConfigHandler)
	r.POST("/run_calculation_demo", modelHandler.RunCalculationDemoHandler)
	r.POST("/evaluate", modelHandler.EvaluateHandler)

	slog.Info("listening", "addr", settings.Addr, "data_dir", settings.DataDir)
	if err := r.Run(settings.Addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
