package infrastructure

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"

	"mierio/backend/internal/features/model/domain"
)

// ExpressionEngine evaluates a built equation against feature values.
type ExpressionEngine interface {
	Evaluate(expression string, values domain.FeatureValues) (float64, error)
}

// mathNamespace is bound on top of the feature values; a feature named like
// one of these is shadowed.
var mathNamespace = map[string]any{
	"exp": math.Exp,
	"log": math.Log,
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
	"pi":  math.Pi,
}

// exprEngine is the implementation of ExpressionEngine on expr-lang/expr.
type exprEngine struct{}

// NewExprEngine creates an ExpressionEngine whose namespace holds only the
// supplied feature values and the math functions above. Builtins of the
// expression language are disabled.
func NewExprEngine() ExpressionEngine {
	return &exprEngine{}
}

// Evaluate compiles expression against the sealed namespace and runs it.
func (e *exprEngine) Evaluate(expression string, values domain.FeatureValues) (float64, error) {
	env := make(map[string]any, len(values)+len(mathNamespace))
	for name, value := range values {
		env[name] = value
	}
	for name, fn := range mathNamespace {
		env[name] = fn
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.DisableAllBuiltins())
	if err != nil {
		return 0, fmt.Errorf("failed to compile: %w", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("failed to run: %w", err)
	}
	return toScalar(out)
}

func toScalar(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("result is %T, not a number", v)
}
