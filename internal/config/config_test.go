package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mierio/backend/internal/config"
	"mierio/backend/internal/features/model/domain"
)

func TestModelConfigStore_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := config.NewModelConfigStore(dir)

	model := &domain.SavedModel{
		FeatureCSVPath: "/data/feature.csv",
		TargetCSVPath:  "/data/target.csv",
		ModelConfiguration: domain.ModelConfiguration{
			Name:          "spring",
			FittingMethod: domain.CombinationProduct,
			Functions:     []domain.ShapeFunction{{Name: "Linear", Equation: "k*x+b", Parameters: "k=2, b=1"}},
			Assignments:   domain.FittingAssignment{"Z": {"X1": "Linear"}},
		},
	}
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)

	filename, err := store.SaveModelConfig(model, now)
	require.NoError(t, err)
	require.Equal(t, "LAW_MODEL_20250304050607.json", filename)
	require.FileExists(t, filepath.Join(dir, filename))

	loaded, err := store.LoadModelConfig(filename)
	require.NoError(t, err)
	require.Equal(t, model, loaded)
	require.Equal(t, "2025-03-04T05:06:07.000000", loaded.Timestamp)
}

func TestModelConfigStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	store := config.NewModelConfigStore(dir)

	_, err := store.LoadModelConfig("LAW_MODEL_missing.json")
	require.ErrorIs(t, err, config.ErrModelConfigNotFound)

	_, err = store.LoadModelConfig("../secret.json")
	require.ErrorContains(t, err, "invalid model config file name")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	_, err = store.LoadModelConfig("broken.json")
	require.ErrorContains(t, err, "failed to unmarshal")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "method.json"), []byte(`{"fitting_method":"mean"}`), 0644))
	_, err = store.LoadModelConfig("method.json")
	require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestModelConfigStore_List(t *testing.T) {
	dir := t.TempDir()
	store := config.NewModelConfigStore(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte("{\"x\": 1}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("-"), 0644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.json"), old, old))

	configs, err := store.ListModelConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	require.Equal(t, "b.json", configs[0].Filename)
	require.Equal(t, "a.json", configs[1].Filename)
	require.Equal(t, "2 hours ago", configs[1].Age)
	require.EqualValues(t, 2, configs[1].Size)
	require.Equal(t, "2 B", configs[1].SizeText)
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIERIO_DATA_DIR", dir)
	t.Setenv("MIERIO_ADDR", ":9999")
	t.Setenv("MIERIO_DB_PATH", "")

	s, err := config.LoadSettings()
	require.NoError(t, err)
	require.Equal(t, ":9999", s.Addr)
	require.Equal(t, filepath.Join(dir, "workspaces.db"), s.DBPath)
	require.Equal(t, "mierio_session", s.SessionCookie)
	require.DirExists(t, s.UploadDir)
	require.DirExists(t, s.ModelDir)
}
