package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// MainID is the join key of the uploaded tables. It is never a model variable.
const MainID = "main_id"

// Labels used by the browser UI and by saved configuration files.
const (
	LabelLinearCombination = "線形結合"
	LabelProduct           = "乗積"
)

// IsReserved reports whether name is the reserved join key (case-insensitive).
func IsReserved(name string) bool {
	return strings.EqualFold(name, MainID)
}

// CombinationMethod defines how per-feature sub-expressions are merged.
type CombinationMethod int

const (
	CombinationSum CombinationMethod = iota
	CombinationProduct
)

// ParseCombinationMethod maps a UI or API label to a CombinationMethod.
// An empty label means SUM, the default of the model tab.
func ParseCombinationMethod(label string) (CombinationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", LabelLinearCombination, "sum", "linear":
		return CombinationSum, nil
	case LabelProduct, "product":
		return CombinationProduct, nil
	}
	return CombinationSum, fmt.Errorf("%w: unknown fitting method %q", ErrInvalidConfiguration, label)
}

// Operator returns the infix operator joining sub-expressions.
func (m CombinationMethod) Operator() string {
	if m == CombinationProduct {
		return " * "
	}
	return " + "
}

// Label returns the label stored in configuration files.
func (m CombinationMethod) Label() string {
	if m == CombinationProduct {
		return LabelProduct
	}
	return LabelLinearCombination
}

func (m CombinationMethod) String() string {
	if m == CombinationProduct {
		return "PRODUCT"
	}
	return "SUM"
}

func (m CombinationMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Label())
}

func (m *CombinationMethod) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("%w: fitting_method must be a string", ErrInvalidConfiguration)
	}
	parsed, err := ParseCombinationMethod(label)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ShapeFunction is a named equation template over the bound variable x.
type ShapeFunction struct {
	Name       string `json:"name"`
	Equation   string `json:"equation"`
	Parameters string `json:"parameters"`
}

// FittingAssignment maps target -> feature -> shape function name.
type FittingAssignment map[string]map[string]string

// FeatureFirstAssignment maps feature -> target -> shape function name,
// the orientation the model table in the browser edits.
type FeatureFirstAssignment map[string]map[string]string

// Targets returns the assigned target names in sorted order, without main_id.
func (a FittingAssignment) Targets() []string {
	targets := make([]string, 0, len(a))
	for target := range a {
		if IsReserved(target) {
			continue
		}
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

// ModelConfiguration is the catalog of shape functions, the assignment of
// functions to features per target and the combination method.
type ModelConfiguration struct {
	Name          string            `json:"model_name"`
	FittingMethod CombinationMethod `json:"fitting_method"`
	Functions     []ShapeFunction   `json:"functions"`
	Assignments   FittingAssignment `json:"fitting_config"`
}

// FunctionsByName indexes the catalog. A later duplicate wins, as the
// catalog is validated for unique names before use.
func (c *ModelConfiguration) FunctionsByName() map[string]ShapeFunction {
	functions := make(map[string]ShapeFunction, len(c.Functions))
	for _, fn := range c.Functions {
		functions[fn.Name] = fn
	}
	return functions
}

// SavedModel is the on-disk form of a model configuration.
type SavedModel struct {
	Timestamp      string `json:"timestamp"`
	FeatureCSVPath string `json:"feature_csv_path"`
	TargetCSVPath  string `json:"target_csv_path"`
	ModelConfiguration
}

// FeatureValues maps feature name to its value for one evaluation call.
type FeatureValues map[string]float64
