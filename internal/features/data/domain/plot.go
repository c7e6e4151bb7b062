package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Roles of a feature parameter in the view tab.
const (
	ParamXAxis    = "X_axis"
	ParamYAxis    = "Y_axis"
	ParamConstant = "Constant"
)

// GridResolution is the number of interpolation points per axis.
const GridResolution = 10

// ErrNoData is wrapped when filtering leaves nothing to plot.
var ErrNoData = errors.New("no data to plot")

// PlotParam is one feature parameter selected in the view tab.
type PlotParam struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// PlotRequest selects the axes, constant filters and target of a scatter plot.
type PlotRequest struct {
	FeatureParams []PlotParam `json:"featureParams"`
	TargetParam   string      `json:"targetParam"`
}

// Range is the extent of one plotted column.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PlotData is the scatter series rendered by the browser.
type PlotData struct {
	XColumn string    `json:"x_column"`
	YColumn string    `json:"y_column"`
	ZColumn string    `json:"z_column"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Z       []float64 `json:"z"`
	XRange  Range     `json:"x_range"`
	YRange  Range     `json:"y_range"`
	ZRange  Range     `json:"z_range"`
	XGrid   []float64 `json:"x_grid"`
	YGrid   []float64 `json:"y_grid"`
}

// Axes returns the X and Y axis columns of the request.
func (r *PlotRequest) Axes() (x, y string) {
	for _, p := range r.FeatureParams {
		switch {
		case p.Type == ParamXAxis && x == "":
			x = p.Name
		case p.Type == ParamYAxis && y == "":
			y = p.Name
		}
	}
	return x, y
}

// FilterConstants keeps the rows matching every Constant parameter. A column
// with at least one numeric cell is compared numerically within tolerance;
// otherwise cells are compared as strings.
func FilterConstants(t *Table, params []PlotParam) (*Table, error) {
	filtered := &Table{Headers: t.Headers, Rows: t.Rows}
	for _, p := range params {
		if p.Type != ParamConstant {
			continue
		}
		if p.Value == "" {
			return nil, fmt.Errorf("constant value for '%s' is not provided", p.Name)
		}
		col, ok := filtered.Column(p.Name)
		if !ok {
			return nil, fmt.Errorf("parameter '%s' not found in data for Constant filter", p.Name)
		}

		numbers := filtered.Numbers(col)
		numeric := false
		for _, v := range numbers {
			if !math.IsNaN(v) {
				numeric = true
				break
			}
		}

		var rows [][]string
		if numeric {
			want, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid constant value for '%s': must be a number or match string value", p.Name)
			}
			for i, v := range numbers {
				if isClose(v, want) {
					rows = append(rows, filtered.Rows[i])
				}
			}
		} else {
			for _, row := range filtered.Rows {
				if row[col] == p.Value {
					rows = append(rows, row)
				}
			}
		}
		filtered = &Table{Headers: filtered.Headers, Rows: rows}
	}
	return filtered, nil
}

// isClose matches numpy.isclose with atol=1e-9 and the default rtol.
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9+1e-5*math.Abs(b)
}

// BuildPlotData extracts the numeric X, Y and Z series of the request from a
// merged table, after applying its constant filters. Rows where any of the
// three is not a number are dropped.
func BuildPlotData(merged *Table, req *PlotRequest) (*PlotData, error) {
	xName, yName := req.Axes()
	if xName == "" || yName == "" || req.TargetParam == "" {
		return nil, errors.New("please select X-axis, Y-axis, and Target parameter")
	}

	filtered, err := FilterConstants(merged, req.FeatureParams)
	if err != nil {
		return nil, err
	}
	if len(filtered.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data matches the selected constant filters", ErrNoData)
	}

	cols := make([]int, 3)
	for i, name := range []string{xName, yName, req.TargetParam} {
		col, ok := filtered.Column(name)
		if !ok {
			return nil, fmt.Errorf("parameter '%s' not found in data", name)
		}
		cols[i] = col
	}

	xs, ys, zs := filtered.Numbers(cols[0]), filtered.Numbers(cols[1]), filtered.Numbers(cols[2])
	data := &PlotData{XColumn: xName, YColumn: yName, ZColumn: req.TargetParam}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(zs[i]) {
			continue
		}
		data.X = append(data.X, xs[i])
		data.Y = append(data.Y, ys[i])
		data.Z = append(data.Z, zs[i])
	}
	if len(data.X) == 0 {
		return nil, fmt.Errorf("%w: no valid numerical data after filtering and type conversion", ErrNoData)
	}

	data.XRange, data.YRange, data.ZRange = rangeOf(data.X), rangeOf(data.Y), rangeOf(data.Z)
	data.XGrid = Linspace(data.XRange, GridResolution)
	data.YGrid = Linspace(data.YRange, GridResolution)
	return data, nil
}

// Linspace returns n evenly spaced points over r, or the single value when
// the range is empty.
func Linspace(r Range, n int) []float64 {
	if r.Min == r.Max || n < 2 {
		return []float64{r.Min}
	}
	points := make([]float64, n)
	step := (r.Max - r.Min) / float64(n-1)
	for i := range points {
		points[i] = r.Min + step*float64(i)
	}
	points[n-1] = r.Max
	return points
}

func rangeOf(values []float64) Range {
	r := Range{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	return r
}
