package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mierio/backend/internal/features/model/domain"
)

func TestAssignment_RoundTrip(t *testing.T) {
	stored := domain.FittingAssignment{
		"Z1": {"X1": "Linear", "X2": "Exp"},
		"Z2": {"X2": "Linear"},
	}

	selections := stored.ToFeatureFirst()
	require.Equal(t, domain.FeatureFirstAssignment{
		"X1": {"Z1": "Linear"},
		"X2": {"Z1": "Exp", "Z2": "Linear"},
	}, selections)
	require.Equal(t, stored, domain.FromFeatureFirst(selections))
}

func TestAssignment_RoundTripDropsMainID(t *testing.T) {
	stored := domain.FittingAssignment{
		"Z1":      {"X1": "Linear", "MAIN_ID": "Linear"},
		"main_id": {"X1": "Linear"},
	}

	got := domain.FromFeatureFirst(stored.ToFeatureFirst())
	require.Equal(t, domain.FittingAssignment{"Z1": {"X1": "Linear"}}, got)
}

func TestFromFeatureFirst_SkipsBlankSelections(t *testing.T) {
	selections := domain.FeatureFirstAssignment{
		"X1":      {"Z1": "Linear", "Z2": ""},
		"X2":      {"Z1": "", "Z2": ""},
		"Main_Id": {"Z1": "Linear"},
		"X3":      {"main_id": "Linear"},
	}

	require.Equal(t, domain.FittingAssignment{"Z1": {"X1": "Linear"}}, domain.FromFeatureFirst(selections))
}

func TestExpandForHeaders(t *testing.T) {
	stored := domain.FittingAssignment{"Z1": {"X1": "Linear"}}

	table := stored.ExpandForHeaders([]string{"main_id", "X1", "X2"}, []string{"Z1", "Z2", "MAIN_ID"})
	require.Equal(t, domain.FeatureFirstAssignment{
		"X1": {"Z1": "Linear", "Z2": ""},
		"X2": {"Z1": "", "Z2": ""},
	}, table)
}

func TestFittingAssignment_Targets(t *testing.T) {
	stored := domain.FittingAssignment{"b": {}, "A": {}, "main_id": {}, "a": {}}
	require.Equal(t, []string{"A", "a", "b"}, stored.Targets())
}
