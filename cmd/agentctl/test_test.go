package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAgentScript(t *testing.T, base, agent, script string) {
	t.Helper()
	dir := filepath.Join(base, agent)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_simple.py"), []byte(script), 0644))
}

func TestRunTests_EndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	base := t.TempDir()
	writeAgentScript(t, base, "tagger", "echo 'Status Code: 200'\necho 'Tagged: true'\n")
	writeAgentScript(t, base, "reporter", "echo 'Traceback (most recent call last):'\necho 'Error: boom'\nexit 1\n")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "charter"), 0755))

	work := t.TempDir()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Runner.BaseDir = base
	cfg.Runner.Command = []string{"/bin/sh"}
	cfg.Runner.MetricsTextfile = filepath.Join(work, "agent_tests.prom")
	cfg.Runner.Archive = true
	cfg.Database.SQLitePath = filepath.Join(work, "runs.db")
	cfg.Storage.BaseDir = filepath.Join(work, "artifacts")

	var out bytes.Buffer
	log := logger.NewTestLogger()
	code, err := runTests(context.Background(), cfg, &out, log)
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	text := out.String()
	assert.Contains(t, text, "  [PASS] tagger: Test passed\n     Tagged: true\n")
	assert.Contains(t, text, "  [FAIL] reporter: Test failed (exit code: 1)\n")
	assert.Contains(t, text, "     Error: boom\n")
	assert.Contains(t, text, "  [SKIP] charter: No test_simple.py found, skipping\n")
	assert.Contains(t, text, "  [SKIP] planner: Directory not found\n")
	assert.Contains(t, text, "Passed: 4/5")
	assert.Contains(t, text, "Failed: 1/5")

	metrics, err := os.ReadFile(cfg.Runner.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "agent_test_failed_agents 1")

	store, closeDB, err := openRunStore(context.Background(), cfg, log)
	require.NoError(t, err)
	defer closeDB()

	runs, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, testrun.StatusFailed, runs[0].Status)

	run, err := store.GetByID(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.Len(t, run.Results, 5)
	assert.NotEmpty(t, run.Results[0].StdoutKey)
	assert.FileExists(t, filepath.Join(cfg.Storage.BaseDir, filepath.FromSlash(run.Results[0].StdoutKey)))
}

func TestRunTests_ArchiveFailureKeepsExitCode(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.Runner.BaseDir = t.TempDir()
	cfg.Runner.Archive = true
	cfg.Database.Driver = "postgres"

	log := logger.NewTestLogger()
	code, err := runTests(context.Background(), cfg, &bytes.Buffer{}, log)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.True(t, log.Contains("error", "failed to archive test run"))
}
