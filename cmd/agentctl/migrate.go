package main

import (
	"fmt"

	"github.com/hairizuanbinnoorazman/agent-backend/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration commands",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(cfg database.Config, db *gorm.DB) error {
			if err := database.RunMigrations(db, cfg); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(cfg database.Config, db *gorm.DB) error {
			if err := database.RollbackMigration(db, cfg); err != nil {
				return fmt.Errorf("failed to rollback migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func withDatabase(fn func(cfg database.Config, db *gorm.DB) error) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dbCfg := cfg.databaseConfig()
	db, err := database.Connect(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	return fn(dbCfg, db)
}
