package application

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"mierio/backend/internal/features/data/domain"
	"mierio/backend/internal/features/data/infrastructure"
)

// File kinds accepted by Upload.
const (
	KindFeature = "feature"
	KindTarget  = "target"
)

// ErrInvalidUpload is wrapped when an upload is rejected before it is stored.
var ErrInvalidUpload = errors.New("invalid upload")

// UploadResult describes a stored CSV file.
type UploadResult struct {
	Filename string   `json:"filename"`
	Headers  []string `json:"headers"`
	Filepath string   `json:"filepath"`
	FileType string   `json:"file_type"`
	Size     string   `json:"size"`
}

// DataService defines the interface for uploaded tabular data.
type DataService interface {
	Upload(kind, filename string, src io.Reader) (*UploadResult, error)
	PlotData(featurePath, targetPath string, req *domain.PlotRequest) (*domain.PlotData, error)
}

// dataService is the implementation of DataService.
type dataService struct {
	uploadDir string
	reader    infrastructure.TableReader
}

// NewDataService creates a new instance of dataService storing uploads in uploadDir.
func NewDataService(uploadDir string, reader infrastructure.TableReader) DataService {
	return &dataService{uploadDir: uploadDir, reader: reader}
}

// Upload stores a CSV file and returns its headers without main_id.
func (s *dataService) Upload(kind, filename string, src io.Reader) (*UploadResult, error) {
	if kind != KindFeature && kind != KindTarget {
		return nil, fmt.Errorf("%w: invalid file type specified", ErrInvalidUpload)
	}
	name := filepath.Base(filename)
	if filename == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: no selected file", ErrInvalidUpload)
	}
	if !strings.HasSuffix(name, ".csv") {
		return nil, fmt.Errorf("%w: only .csv files are accepted", ErrInvalidUpload)
	}

	path := filepath.Join(s.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", path, err)
	}

	table, err := s.reader.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV or extract headers: %w", err)
	}

	slog.Info("csv uploaded", "kind", kind, "path", path, "rows", len(table.Rows), "size", humanize.Bytes(uint64(size)))
	return &UploadResult{
		Filename: name,
		Headers:  table.ModelHeaders(),
		Filepath: path,
		FileType: kind,
		Size:     humanize.Bytes(uint64(size)),
	}, nil
}

// PlotData merges the feature and target files and extracts the scatter
// series selected by req.
func (s *dataService) PlotData(featurePath, targetPath string, req *domain.PlotRequest) (*domain.PlotData, error) {
	feature, err := s.reader.ReadTable(featurePath)
	if err != nil {
		return nil, err
	}
	target, err := s.reader.ReadTable(targetPath)
	if err != nil {
		return nil, err
	}

	merged, err := domain.Merge(feature, target)
	if err != nil {
		return nil, err
	}
	data, err := domain.BuildPlotData(merged, req)
	if err != nil {
		return nil, err
	}

	for _, p := range req.FeatureParams {
		if p.Type == domain.ParamConstant {
			slog.Info("plot parameter", "name", p.Name, "type", p.Type, "value", p.Value)
		}
	}
	slog.Info("plot parameter", "name", data.XColumn, "type", domain.ParamXAxis, "min", data.XRange.Min, "max", data.XRange.Max, "grid", data.XGrid)
	slog.Info("plot parameter", "name", data.YColumn, "type", domain.ParamYAxis, "min", data.YRange.Min, "max", data.YRange.Max, "grid", data.YGrid)
	slog.Info("plot target", "name", data.ZColumn, "min", data.ZRange.Min, "max", data.ZRange.Max, "points", len(data.Z))
	return data, nil
}
