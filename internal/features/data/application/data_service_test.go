package application_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mierio/backend/internal/features/data/application"
	"mierio/backend/internal/features/data/domain"
	"mierio/backend/internal/features/data/infrastructure"
)

func newService(t *testing.T) (application.DataService, string) {
	t.Helper()
	dir := t.TempDir()
	return application.NewDataService(dir, infrastructure.NewCSVReader()), dir
}

func TestDataService_Upload(t *testing.T) {
	svc, dir := newService(t)

	res, err := svc.Upload(application.KindFeature, "feature.csv", strings.NewReader("main_id,X1,X2\n1,3,5\n"))
	require.NoError(t, err)
	require.Equal(t, "feature.csv", res.Filename)
	require.Equal(t, []string{"X1", "X2"}, res.Headers)
	require.Equal(t, filepath.Join(dir, "feature.csv"), res.Filepath)
	require.Equal(t, "feature", res.FileType)
	require.Equal(t, "20 B", res.Size)
	require.FileExists(t, res.Filepath)
}

func TestDataService_UploadRejects(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload("other", "f.csv", strings.NewReader("a\n1\n"))
	require.ErrorIs(t, err, application.ErrInvalidUpload)

	_, err = svc.Upload(application.KindTarget, "", strings.NewReader("a\n1\n"))
	require.ErrorIs(t, err, application.ErrInvalidUpload)

	_, err = svc.Upload(application.KindTarget, "data.xlsx", strings.NewReader("a\n1\n"))
	require.ErrorIs(t, err, application.ErrInvalidUpload)

	_, err = svc.Upload(application.KindTarget, "empty.csv", strings.NewReader(""))
	require.ErrorContains(t, err, "failed to read CSV or extract headers")
}

func TestDataService_PlotData(t *testing.T) {
	svc, _ := newService(t)
	f, err := svc.Upload(application.KindFeature, "f.csv", strings.NewReader("main_id,X1,X2\n1,3,5\n2,4,6\n"))
	require.NoError(t, err)
	tg, err := svc.Upload(application.KindTarget, "t.csv", strings.NewReader("main_id,Z\n2,20\n1,10\n"))
	require.NoError(t, err)

	data, err := svc.PlotData(f.Filepath, tg.Filepath, &domain.PlotRequest{
		FeatureParams: []domain.PlotParam{
			{Name: "X1", Type: domain.ParamXAxis},
			{Name: "X2", Type: domain.ParamYAxis},
		},
		TargetParam: "Z",
	})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 4}, data.X)
	require.Equal(t, []float64{10, 20}, data.Z)

	_, err = svc.PlotData(f.Filepath, filepath.Join(t.TempDir(), "gone.csv"), &domain.PlotRequest{})
	require.ErrorContains(t, err, "not found")
}
