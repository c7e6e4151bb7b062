package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"mierio/backend/internal/session"
)

func openStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "workspaces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_GetUnknownReturnsEmptyWorkspace(t *testing.T) {
	store := openStore(t)

	ws, err := store.Get(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, "nobody", ws.ID)
	require.False(t, ws.HasTables())
	require.Empty(t, ws.LoadedModel)
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	ws := &session.Workspace{ID: "abc"}
	ws.SetTable("feature", "/data/f.csv", []string{"X1", "X2"})
	ws.SetTable("target", "/data/t.csv", []string{"Z"})
	ws.LoadedModel = "LAW_MODEL_20250101000000.json"
	require.NoError(t, store.Save(ctx, ws))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, got.HasTables())
	require.Equal(t, []string{"X1", "X2"}, got.FeatureHeaders)
	require.Equal(t, []string{"Z"}, got.TargetHeaders)
	require.Equal(t, "/data/t.csv", got.TargetPath)
	require.Equal(t, "LAW_MODEL_20250101000000.json", got.LoadedModel)

	got.ClearTable("target")
	require.NoError(t, store.Save(ctx, got))

	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.False(t, again.HasTables())
	require.Empty(t, again.TargetHeaders)
	require.Equal(t, "/data/f.csv", again.FeaturePath)
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Save(ctx, &session.Workspace{ID: "old"}))

	n, err := store.Prune(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = store.Prune(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(session.Middleware("sid"))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, session.WorkspaceID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	issued := w.Body.String()
	require.NoError(t, uuid.Validate(issued))
	require.Contains(t, w.Header().Get("Set-Cookie"), "sid="+issued)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: issued})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, issued, w.Body.String())
	require.Empty(t, w.Header().Get("Set-Cookie"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-uuid"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.NotEqual(t, "not-a-uuid", w.Body.String())
}
