package application

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"mierio/backend/internal/config"
	datadomain "mierio/backend/internal/features/data/domain"
	datainfra "mierio/backend/internal/features/data/infrastructure"
	"mierio/backend/internal/features/model/domain"
	"mierio/backend/internal/features/model/infrastructure"
)

var (
	// ErrTablesNotLoaded is returned when an operation needs both CSV files.
	ErrTablesNotLoaded = errors.New("feature or target CSV files are not loaded")
	// ErrCSVMismatch is returned when a configuration was saved against other CSV files.
	ErrCSVMismatch = errors.New("the configuration file was saved with different CSV files")
	// ErrNoModelLoaded is returned by RunDemo before a configuration was loaded.
	ErrNoModelLoaded = errors.New("no model configuration loaded")
)

// SaveModelRequest is the model tab as edited in the browser.
type SaveModelRequest struct {
	ModelName     string                        `json:"modelName"`
	FittingConfig domain.FeatureFirstAssignment `json:"fittingConfig"`
	FittingMethod domain.CombinationMethod      `json:"fittingMethod"`
	Functions     []domain.ShapeFunction        `json:"functions"`
}

// Tables locates the uploaded CSV files of a workspace.
type Tables struct {
	FeaturePath    string
	TargetPath     string
	FeatureHeaders []string
	TargetHeaders  []string
}

func (t Tables) loaded() bool {
	return t.FeaturePath != "" && t.TargetPath != ""
}

// LoadedModel is a saved configuration prepared for the model tab.
type LoadedModel struct {
	Model         *domain.SavedModel            `json:"-"`
	ModelName     string                        `json:"model_name"`
	FittingConfig domain.FeatureFirstAssignment `json:"fitting_config"`
	FittingMethod domain.CombinationMethod      `json:"fitting_method"`
	Functions     []domain.ShapeFunction        `json:"functions"`
	Equations     []domain.Equation             `json:"equations"`
}

// DemoResult is the evaluation of a model against the first feature row.
type DemoResult struct {
	Inputs    domain.FeatureValues `json:"inputs"`
	Results   map[string]float64   `json:"results"`
	Actual    map[string]string    `json:"actual,omitempty"`
	Equations []domain.Equation    `json:"equations"`
}

// ModelService defines the interface for building and evaluating models.
type ModelService interface {
	Evaluate(cfg *domain.ModelConfiguration, values domain.FeatureValues) (map[string]float64, error)
	SaveModel(req *SaveModelRequest, tables Tables) (string, error)
	LoadModel(filename string, tables Tables) (*LoadedModel, error)
	RunDemo(filename string, tables Tables) (*DemoResult, error)
	ListModels() ([]config.StoredModelConfig, error)
}

// modelService is the implementation of ModelService.
type modelService struct {
	engine infrastructure.ExpressionEngine
	store  config.ModelConfigStore
	tables datainfra.TableReader
	now    func() time.Time
}

// NewModelService creates a new instance of modelService.
func NewModelService(engine infrastructure.ExpressionEngine, store config.ModelConfigStore, tables datainfra.TableReader) ModelService {
	return &modelService{engine: engine, store: store, tables: tables, now: time.Now}
}

// Evaluate validates cfg, builds the equation of every target and evaluates
// it against values. Targets without an equation are left out of the result.
// The first evaluation failure aborts the call.
func (s *modelService) Evaluate(cfg *domain.ModelConfiguration, values domain.FeatureValues) (map[string]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	functions := cfg.FunctionsByName()
	results := make(map[string]float64)
	for _, target := range cfg.Assignments.Targets() {
		expression, ok := domain.BuildEquation(target, cfg.Assignments, functions, cfg.FittingMethod)
		if !ok {
			slog.Debug("no equation for target", "target", target)
			continue
		}
		value, err := s.engine.Evaluate(expression, values)
		if err != nil {
			return nil, &domain.EvaluationError{Target: target, Expression: expression, Err: err}
		}
		results[target] = value
	}
	return results, nil
}

// SaveModel inverts the model table into the stored orientation, validates
// the result and writes it next to the paths of the current CSV files.
func (s *modelService) SaveModel(req *SaveModelRequest, tables Tables) (string, error) {
	if len(req.FittingConfig) == 0 || len(req.Functions) == 0 {
		return "", fmt.Errorf("%w: no model configuration data received", domain.ErrInvalidConfiguration)
	}
	if !tables.loaded() {
		return "", fmt.Errorf("%w: cannot save configuration", ErrTablesNotLoaded)
	}

	featurePath, err := filepath.Abs(tables.FeaturePath)
	if err != nil {
		return "", err
	}
	targetPath, err := filepath.Abs(tables.TargetPath)
	if err != nil {
		return "", err
	}

	model := &domain.SavedModel{
		FeatureCSVPath: featurePath,
		TargetCSVPath:  targetPath,
		ModelConfiguration: domain.ModelConfiguration{
			Name:          req.ModelName,
			FittingMethod: req.FittingMethod,
			Functions:     req.Functions,
			Assignments:   domain.FromFeatureFirst(req.FittingConfig),
		},
	}
	if err := model.Validate(); err != nil {
		return "", err
	}

	filename, err := s.store.SaveModelConfig(model, s.now())
	if err != nil {
		return "", err
	}
	slog.Info("model configuration saved", "file", filename, "model", model.Name, "targets", len(model.Assignments))
	return filename, nil
}

// LoadModel reads a saved configuration, checks it belongs to the current CSV
// files and lays its assignment out over their headers.
func (s *modelService) LoadModel(filename string, tables Tables) (*LoadedModel, error) {
	model, err := s.store.LoadModelConfig(filename)
	if err != nil {
		return nil, err
	}
	if !tables.loaded() {
		return nil, fmt.Errorf("%w: please load them first", ErrTablesNotLoaded)
	}
	if !samePath(model.FeatureCSVPath, tables.FeaturePath) || !samePath(model.TargetCSVPath, tables.TargetPath) {
		return nil, fmt.Errorf("%w: please load the matching CSVs first", ErrCSVMismatch)
	}

	equations := domain.DescribeEquations(&model.ModelConfiguration)
	logEquations(filename, equations)

	return &LoadedModel{
		Model:         model,
		ModelName:     model.Name,
		FittingConfig: model.Assignments.ExpandForHeaders(tables.FeatureHeaders, tables.TargetHeaders),
		FittingMethod: model.FittingMethod,
		Functions:     model.Functions,
		Equations:     equations,
	}, nil
}

// RunDemo evaluates a saved configuration against the first row of the
// feature file and looks up the actual target row with the same main_id.
func (s *modelService) RunDemo(filename string, tables Tables) (*DemoResult, error) {
	if filename == "" {
		return nil, ErrNoModelLoaded
	}
	if tables.FeaturePath == "" {
		return nil, fmt.Errorf("%w: feature data not loaded", ErrTablesNotLoaded)
	}
	model, err := s.store.LoadModelConfig(filename)
	if err != nil {
		return nil, err
	}

	feature, err := s.tables.ReadTable(tables.FeaturePath)
	if err != nil {
		return nil, err
	}
	if len(feature.Rows) == 0 {
		return nil, errors.New("feature CSV is empty")
	}
	first := feature.Record(0)

	inputs := make(domain.FeatureValues)
	for _, header := range tables.FeatureHeaders {
		if cell, ok := first[header]; ok {
			inputs[header] = datadomain.ParseNumber(cell)
		}
	}

	results, err := s.Evaluate(&model.ModelConfiguration, inputs)
	if err != nil {
		return nil, err
	}
	slog.Info("calculation demo", "model", filename, "inputs", inputs, "results", results)

	demo := &DemoResult{
		Inputs:    inputs,
		Results:   results,
		Equations: domain.DescribeEquations(&model.ModelConfiguration),
	}
	if id, ok := first[datadomain.MainIDColumn]; ok && tables.TargetPath != "" {
		demo.Actual = s.actualTargets(tables.TargetPath, id)
		if demo.Actual != nil {
			slog.Info("actual targets", "main_id", id, "values", demo.Actual)
		}
	}
	return demo, nil
}

// ListModels returns the saved configuration files.
func (s *modelService) ListModels() ([]config.StoredModelConfig, error) {
	return s.store.ListModelConfigs()
}

func (s *modelService) actualTargets(path, id string) map[string]string {
	target, err := s.tables.ReadTable(path)
	if err != nil {
		slog.Warn("failed to read target CSV", "path", path, "error", err)
		return nil
	}
	col, ok := target.Column(datadomain.MainIDColumn)
	if !ok {
		return nil
	}
	for i, row := range target.Rows {
		if row[col] == id {
			return target.Record(i)
		}
	}
	return nil
}

func logEquations(filename string, equations []domain.Equation) {
	slog.Info("generated combined functions", "file", filename, "targets", len(equations))
	for _, eq := range equations {
		slog.Info(eq.Symbolic)
		slog.Info("    └─ substituted", "equation", fmt.Sprintf("%q [Equation] = %s", eq.Target, eq.Expression), "fingerprint", eq.Fingerprint)
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
