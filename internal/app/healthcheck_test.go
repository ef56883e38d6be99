package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := NewConfig(Config{InputPath: "in", ConfigPath: "cfg", LogLevel: "debug"})
	require.NoError(t, err)
	app, err := NewApp(context.Background(), &bytes.Buffer{}, cfg, WithWorkingDir(t.TempDir()))
	require.NoError(t, err)
	return app
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := httptest.NewRecorder()

	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestProgressEndpoint(t *testing.T) {
	// --- Arrange ---
	app := newTestApp(t)
	app.progress.start("run-7")
	app.progress.setPhase(PhaseAnnotating)
	app.progress.planned(6, 2)
	for i := 0; i < 4; i++ {
		app.progress.taskDone()
	}
	app.progress.outputDone()
	rec := httptest.NewRecorder()

	// --- Act ---
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))

	// --- Assert ---
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got ProgressSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, ProgressSnapshot{
		RunID:          "run-7",
		Phase:          PhaseAnnotating,
		TasksPlanned:   6,
		TasksDone:      4,
		OutputsPlanned: 2,
		OutputsMerged:  1,
	}, got)
}

func TestRoutes_RejectOtherMethods(t *testing.T) {
	app := newTestApp(t)
	rec := httptest.NewRecorder()

	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthCheckServer_Disabled(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.healthCheckServer(ctx))
	assert.Nil(t, app.httpServer)
	assert.NoError(t, app.closeHealthCheckServer(ctx))
}
