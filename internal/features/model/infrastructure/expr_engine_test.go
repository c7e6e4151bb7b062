package infrastructure_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"mierio/backend/internal/features/model/domain"
	"mierio/backend/internal/features/model/infrastructure"
)

func TestExprEngine_Evaluate(t *testing.T) {
	engine := infrastructure.NewExprEngine()
	values := domain.FeatureValues{"X1": 3, "X2": 5, "X2_height": -6}

	tests := []struct {
		expression string
		want       float64
	}{
		{"(2*X1+1)", 7},
		{"(2*X1+1) * (2*X2+1)", 77},
		{"(2*X1+1) + (2*X2+1)", 18},
		{"(X1)", 3},
		{"1 + 2", 3},
		{"7 / 2", 3.5},
		{"X1 ** 2", 9},
		{"(1.5*exp(-0.2*X2_height))", 1.5 * math.Exp(1.2)},
		{"log(exp(2))", 2},
		{"sin(0) + cos(0)", 1},
		{"tan(0)", 0},
		{"2*pi", 2 * math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			got, err := engine.Evaluate(tt.expression, values)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestExprEngine_DivisionByZeroIsInfinite(t *testing.T) {
	engine := infrastructure.NewExprEngine()

	got, err := engine.Evaluate("X1 / X0", domain.FeatureValues{"X1": 1, "X0": 0})
	require.NoError(t, err)
	require.True(t, math.IsInf(got, 1))
}

func TestExprEngine_Failures(t *testing.T) {
	engine := infrastructure.NewExprEngine()
	values := domain.FeatureValues{"X1": 3}

	tests := []struct {
		name       string
		expression string
	}{
		{name: "unresolved identifier", expression: "(2*X9+1)"},
		{name: "malformed", expression: "(2*X1+"},
		{name: "builtins are sealed", expression: "abs(X1)"},
		{name: "boolean result", expression: "X1 > 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Evaluate(tt.expression, values)
			require.Error(t, err)
		})
	}
}

func TestExprEngine_MathShadowsFeature(t *testing.T) {
	engine := infrastructure.NewExprEngine()

	got, err := engine.Evaluate("pi", domain.FeatureValues{"pi": 3})
	require.NoError(t, err)
	require.Equal(t, math.Pi, got)
}
