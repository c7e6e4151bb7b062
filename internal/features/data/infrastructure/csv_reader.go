package infrastructure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mierio/backend/internal/features/data/domain"
)

// TableReader loads tabular files into memory.
type TableReader interface {
	ReadTable(path string) (*domain.Table, error)
}

// csvReader is the implementation of TableReader for comma-separated files.
type csvReader struct{}

// NewCSVReader creates a TableReader for CSV files with a header row.
func NewCSVReader() TableReader {
	return &csvReader{}
}

// ReadTable reads the CSV file at path. A UTF-8 byte order mark before the
// first header is dropped.
func (r *csvReader) ReadTable(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("CSV file not found: %s: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads a header row followed by data rows.
func ParseCSV(src io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(src)
	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	return &domain.Table{Headers: headers, Rows: rows}, nil
}
