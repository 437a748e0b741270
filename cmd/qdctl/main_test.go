package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queridodiario/internal/models"
)

// run executes qdctl with args and returns what it printed
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func useDatabase(t *testing.T, path string) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DB_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"migrate"},
		{"tenant", "create"},
		{"tenant", "set-password"},
		{"tenant", "set-plan"},
		{"tenant", "list"},
		{"tenant", "delete"},
		{"backup", "export"},
		{"backup", "import"},
		{"panel", "show"},
		{"panel", "mark"},
		{"panel", "tap"},
		{"panel", "note"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotEmpty(t, cmd.Short, path)
	}
}

func TestTenantCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	useDatabase(t, filepath.Join(t.TempDir(), "qd.db"))

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migration version")

	out, err = run(t, "tenant", "create", "ana@example.com", "--name", "Ana", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com, plan free")

	_, err = run(t, "tenant", "create", "ana@example.com", "--name", "Ana")
	assert.Error(t, err, "duplicate email")

	_, err = run(t, "tenant", "create", "bia@example.com")
	assert.Error(t, err, "name is required")

	_, err = run(t, "tenant", "set-plan", "ana@example.com", "pro")
	require.NoError(t, err)
	_, err = run(t, "tenant", "set-plan", "ana@example.com", "gold")
	assert.Error(t, err)
	_, err = run(t, "tenant", "set-password", "ana@example.com", "short")
	assert.Error(t, err)
	_, err = run(t, "tenant", "set-password", "nobody@example.com", "password123")
	assert.Error(t, err)

	out, err = run(t, "tenant", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "pro")
	assert.Contains(t, out, "yes")

	_, err = run(t, "tenant", "delete", "ana@example.com")
	require.NoError(t, err)
	out, err = run(t, "tenant", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "ana@example.com")
}

func TestBackupCommands(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	dir := t.TempDir()
	file := filepath.Join(dir, "out", "backup.json")

	useDatabase(t, filepath.Join(dir, "source.db"))
	_, err := run(t, "tenant", "create", "ana@example.com", "--name", "Ana")
	require.NoError(t, err)

	out, err := run(t, "backup", "export", "--output", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 tenants")

	useDatabase(t, filepath.Join(dir, "restored.db"))
	out, err = run(t, "backup", "import", "--input", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 tenants")

	out, err = run(t, "tenant", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")

	_, err = run(t, "backup", "import", "--input", file)
	assert.Error(t, err, "rows already exist")

	_, err = run(t, "backup", "import")
	assert.Error(t, err, "--input is required")
}

func TestPanelShow(t *testing.T) {
	snap := models.DaySnapshot{
		Diary:       models.DiarySummary{ID: "d1", Name: "Lia", Avatar: "👧"},
		Date:        "2024-03-01",
		DayOfWeek:   models.Friday,
		TotalPoints: 10,
		Note:        "Dia tranquilo",
		Progress:    models.DayProgress{Total: 1, Marked: 1, Done: 1},
		Routines: []models.RoutineView{{
			ID: "r1", Name: "Manhã", Icon: "☀️",
			Activities: []models.ActivityView{{
				ID: "a1", Title: "Beber água", Icon: "💧", Points: 10,
				Type: models.ActivityBinary, Status: models.StatusDone, ScheduledTime: "08:00",
			}},
		}},
	}

	var gotToken, gotDate string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Access-Token")
		gotDate = r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}))
	t.Cleanup(server.Close)

	out, err := run(t, "panel", "show", "--server", server.URL, "--link", server.URL+"/painel#token=tok-1", "--date", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", gotToken)
	assert.Equal(t, "2024-03-01", gotDate)
	assert.Contains(t, out, "Lia")
	assert.Contains(t, out, "total 10 pts")
	assert.Contains(t, out, "08:00 💧 Beber água")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Nota: Dia tranquilo")

	t.Setenv("QD_PANEL_LINK", "")
	_, err = run(t, "panel", "show", "--server", server.URL)
	assert.Error(t, err, "link is required")

	_, err = run(t, "panel", "tap", "a1", "x", "--server", server.URL, "--link", "tok-1")
	assert.Error(t, err)
}
