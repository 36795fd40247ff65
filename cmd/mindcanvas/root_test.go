package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcanvas/internal/config"
	"mindcanvas/internal/data"
	"mindcanvas/internal/event"
	"mindcanvas/internal/logging"
	"mindcanvas/internal/storage"
)

// runCommand executes one CLI invocation against the config at cfgPath and
// returns everything written to the command's output. Flag variables are
// reset first so invocations stay independent.
func runCommand(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	createCategory = ""
	exportFormat = "json"
	exportOut = ""
	importFormat = ""
	migrateFrom = ""
	migrateTo = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func testConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

// seedCollection creates the config on first load and stores one mindmap
// with a single root node, the way a previous session would have left it.
func seedCollection(t *testing.T, cfgPath string) *config.Config {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	store, err := storage.NewStore(cfg.Storage, logging.NewNoop())
	require.NoError(t, err)
	defer store.Close()

	mgr, err := data.NewManager(store, event.NewManager(logging.NewNoop()), logging.NewNoop())
	require.NoError(t, err)
	require.NoError(t, mgr.Load(ctx))

	mm, err := mgr.CreateMindmap(ctx, "Physics", "science")
	require.NoError(t, err)
	_, _, err = mgr.AddNode(ctx, mm.ID, "", data.NodeContent{
		Title:       "Mechanics",
		Description: "Forces and motion.",
	})
	require.NoError(t, err)
	return cfg
}

func TestCreateAndListCommands(t *testing.T) {
	cfgPath := testConfigPath(t)

	out, err := runCommand(t, cfgPath, "create", "Physics", "--category", "science")
	require.NoError(t, err)
	assert.Contains(t, out, `created "Physics"`)

	out, err = runCommand(t, cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, "science")
}

func TestListCommandEmptyCollection(t *testing.T) {
	out, err := runCommand(t, testConfigPath(t), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no mindmaps yet")
}

func TestShowCommand(t *testing.T) {
	cfgPath := testConfigPath(t)
	seedCollection(t, cfgPath)

	out, err := runCommand(t, cfgPath, "show", "Physics")
	require.NoError(t, err)
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, "Mechanics")
}

func TestShowCommandUnknownMindmap(t *testing.T) {
	cfgPath := testConfigPath(t)
	seedCollection(t, cfgPath)

	_, err := runCommand(t, cfgPath, "show", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no mindmap matches "ghost"`)
}

func TestExportImportRoundTrip(t *testing.T) {
	cfgPath := testConfigPath(t)
	seedCollection(t, cfgPath)

	outPath := filepath.Join(filepath.Dir(cfgPath), "physics.json")
	out, err := runCommand(t, cfgPath, "export", "Physics", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported")

	_, err = os.Stat(outPath)
	require.NoError(t, err)

	out, err = runCommand(t, cfgPath, "import", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "with 1 nodes")

	out, err = runCommand(t, cfgPath, "list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Physics"))
}

func TestMigrateCommand(t *testing.T) {
	cfgPath := testConfigPath(t)
	cfg := seedCollection(t, cfgPath)

	out, err := runCommand(t, cfgPath, "migrate", "--to", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "copied 1 mindmaps from file to sqlite")

	st, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath, logging.NewNoop())
	require.NoError(t, err)
	defer st.Close()

	maps, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "Physics", maps[0].Name)
}

func TestMigrateRejectsSameDriver(t *testing.T) {
	cfgPath := testConfigPath(t)

	_, err := runCommand(t, cfgPath, "migrate", "--to", "file")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `both "file"`)
}

func TestSummarizeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"summary":"Motion follows three laws."}`))
	}))
	defer srv.Close()

	cfgPath := testConfigPath(t)
	cfg := seedCollection(t, cfgPath)
	cfg.Summarize.Endpoint = srv.URL
	require.NoError(t, config.Save(cfg, cfgPath))

	out, err := runCommand(t, cfgPath, "summarize", "Physics", "Mechanics")
	require.NoError(t, err)
	assert.Contains(t, out, "Motion follows three laws.")
}

func TestSummarizeCommandUnconfigured(t *testing.T) {
	cfgPath := testConfigPath(t)
	seedCollection(t, cfgPath)

	_, err := runCommand(t, cfgPath, "summarize", "Physics", "Mechanics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
