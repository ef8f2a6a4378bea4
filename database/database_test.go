package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{User: "root", Password: "secret", Host: "db", Port: 3306, Database: "agent_backend"}
	assert.Equal(t, "root:secret@tcp(db:3306)/agent_backend?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestConnect_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unknown driver", cfg: Config{Driver: "postgres"}},
		{name: "empty driver", cfg: Config{}},
		{name: "sqlite without path", cfg: Config{Driver: "sqlite"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := Connect(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, db)
		})
	}
}

func TestSQLite_ConnectAndMigrate(t *testing.T) {
	cfg := Config{
		Driver:       "SQLite",
		SQLitePath:   filepath.Join(t.TempDir(), "runs.db"),
		MaxOpenConns: 1,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, RunMigrations(db, cfg))
	// Migrating twice is a no-op.
	require.NoError(t, RunMigrations(db, cfg))

	assert.True(t, db.Migrator().HasTable("agent_test_runs"))
	assert.True(t, db.Migrator().HasTable("agent_test_results"))

	store := testrun.NewGormStore(db, logger.NewTestLogger())
	started := time.Now().UTC().Truncate(time.Second)
	run := &testrun.Run{
		Status:     testrun.StatusPassed,
		Total:      1,
		Passed:     1,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		DurationMs: 3000,
		Results: []testrun.AgentResult{
			{Agent: "tagger", Outcome: testrun.OutcomePassed, DurationMs: 3000},
		},
	}
	require.NoError(t, store.Create(context.Background(), run))

	got, err := store.GetByID(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "tagger", got.Results[0].Agent)
}

func TestRollbackMigration_SQLiteUnsupported(t *testing.T) {
	cfg := Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "runs.db")}
	db, err := Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	assert.ErrorIs(t, RollbackMigration(db, cfg), ErrRollbackUnsupported)
}

func TestMigrationFiles(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"000001_create_agent_test_runs.down.sql",
		"000001_create_agent_test_runs.up.sql",
		"000002_create_agent_test_results.down.sql",
		"000002_create_agent_test_results.up.sql",
	}, names)
}
