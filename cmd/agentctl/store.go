package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hairizuanbinnoorazman/agent-backend/database"
	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/testrun"
	"gorm.io/gorm"
)

// openDatabase connects to the run history database. SQLite schemas are
// created on connect; MySQL expects `agentctl migrate up` to have run.
func openDatabase(ctx context.Context, cfg *Config, log logger.Logger) (*gorm.DB, func(), error) {
	dbCfg := cfg.databaseConfig()

	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	closeFn := func() { sqlDB.Close() }

	if strings.EqualFold(dbCfg.Driver, database.DriverSQLite) {
		if err := database.RunMigrations(db, dbCfg); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to prepare sqlite schema: %w", err)
		}
	}

	log.Info(ctx, "database connected", map[string]interface{}{
		"driver": dbCfg.Driver,
	})
	return db, closeFn, nil
}

func openRunStore(ctx context.Context, cfg *Config, log logger.Logger) (testrun.Store, func(), error) {
	db, closeFn, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return testrun.NewGormStore(db, log), closeFn, nil
}
