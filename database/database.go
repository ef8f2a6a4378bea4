// Package database opens the run history database and manages its schema.
package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config describes how to reach the database.
type Config struct {
	// Driver is "sqlite" or "mysql".
	Driver     string
	SQLitePath string

	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the MySQL data source name for cfg.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

func (c Config) driver() string {
	return strings.ToLower(strings.TrimSpace(c.Driver))
}

// Connect opens a GORM connection for cfg.
func Connect(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var dialector gorm.Dialector
	switch cfg.driver() {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite path cannot be empty")
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
