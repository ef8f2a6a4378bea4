package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/agent-backend/agenttest"
	"github.com/hairizuanbinnoorazman/agent-backend/database"
	"github.com/hairizuanbinnoorazman/agent-backend/logger"
	"github.com/hairizuanbinnoorazman/agent-backend/observability"
	"github.com/hairizuanbinnoorazman/agent-backend/storage"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Log           LogConfig
	Runner        RunnerConfig
	MCP           MCPConfig
	Observability ObservabilityConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Server        ServerConfig
	Client        ClientConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// RunnerConfig holds agent test runner configuration.
type RunnerConfig struct {
	// BaseDir defaults to the directory of the agentctl binary.
	BaseDir         string
	Agents          []string
	TestFile        string
	Command         []string
	Timeout         time.Duration
	SuccessMarker   string
	MetricsTextfile string
	Archive         bool
}

// MCPConfig holds tool server configuration.
type MCPConfig struct {
	TimeoutSeconds int
}

// ObservabilityConfig holds tracing configuration.
type ObservabilityConfig struct {
	ServiceName string
	Host        string
	FlushGrace  time.Duration
	AuthCheck   bool
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver       string
	SQLitePath   string
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig holds artifact storage configuration.
type StorageConfig struct {
	Type        string // "local" or "s3"
	BaseDir     string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ClientConfig holds settings for the runs subcommands.
type ClientConfig struct {
	ServerURL string
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("agentctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("AGENTCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("runner.base_dir", "")
	v.SetDefault("runner.agents", append([]string(nil), agenttest.DefaultAgents...))
	v.SetDefault("runner.test_file", agenttest.DefaultTestFile)
	v.SetDefault("runner.command", []string{"uv", "run"})
	v.SetDefault("runner.timeout", agenttest.DefaultTimeout.String())
	v.SetDefault("runner.success_marker", agenttest.DefaultSuccessMarker)
	v.SetDefault("runner.metrics_textfile", "")
	v.SetDefault("runner.archive", false)

	v.SetDefault("mcp.timeout_seconds", 60)

	v.SetDefault("observability.service_name", observability.DefaultServiceName)
	v.SetDefault("observability.host", observability.DefaultHost)
	v.SetDefault("observability.flush_grace", observability.DefaultFlushGrace.String())
	v.SetDefault("observability.auth_check", true)

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.sqlite_path", "agent-backend.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "agent_backend")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./artifacts")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.s3_access_key", "")
	v.SetDefault("storage.s3_secret_key", "")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("client.server_url", "http://localhost:8080")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Runner.BaseDir = v.GetString("runner.base_dir")
	config.Runner.Agents = v.GetStringSlice("runner.agents")
	config.Runner.TestFile = v.GetString("runner.test_file")
	config.Runner.Command = v.GetStringSlice("runner.command")
	config.Runner.Timeout = v.GetDuration("runner.timeout")
	config.Runner.SuccessMarker = v.GetString("runner.success_marker")
	config.Runner.MetricsTextfile = v.GetString("runner.metrics_textfile")
	config.Runner.Archive = v.GetBool("runner.archive")

	config.MCP.TimeoutSeconds = v.GetInt("mcp.timeout_seconds")

	config.Observability.ServiceName = v.GetString("observability.service_name")
	config.Observability.Host = v.GetString("observability.host")
	config.Observability.FlushGrace = v.GetDuration("observability.flush_grace")
	config.Observability.AuthCheck = v.GetBool("observability.auth_check")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.SQLitePath = v.GetString("database.sqlite_path")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3Endpoint = v.GetString("storage.s3_endpoint")
	config.Storage.S3AccessKey = v.GetString("storage.s3_access_key")
	config.Storage.S3SecretKey = v.GetString("storage.s3_secret_key")

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Client.ServerURL = v.GetString("client.server_url")

	return &config, nil
}

func (c *Config) newLogger() logger.Logger {
	return logger.NewLogrusLogger(logger.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: os.Stderr,
	})
}

// agentTestConfig resolves the runner settings. An empty base directory
// means the directory holding the agentctl binary.
func (c *Config) agentTestConfig() (agenttest.Config, error) {
	baseDir := c.Runner.BaseDir
	if baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return agenttest.Config{}, fmt.Errorf("failed to locate executable: %w", err)
		}
		baseDir = filepath.Dir(exe)
	}

	return agenttest.Config{
		BaseDir:       baseDir,
		Agents:        c.Runner.Agents,
		TestFile:      c.Runner.TestFile,
		Command:       c.Runner.Command,
		Timeout:       c.Runner.Timeout,
		SuccessMarker: c.Runner.SuccessMarker,
	}, nil
}

func (c *Config) observabilityConfig() observability.Config {
	return observability.Config{
		ServiceName: c.Observability.ServiceName,
		Host:        c.Observability.Host,
		FlushGrace:  c.Observability.FlushGrace,
		AuthCheck:   c.Observability.AuthCheck,
	}
}

func (c *Config) databaseConfig() database.Config {
	return database.Config{
		Driver:       c.Database.Driver,
		SQLitePath:   c.Database.SQLitePath,
		Host:         c.Database.Host,
		Port:         c.Database.Port,
		User:         c.Database.User,
		Password:     c.Database.Password,
		Database:     c.Database.Database,
		MaxOpenConns: c.Database.MaxOpenConns,
		MaxIdleConns: c.Database.MaxIdleConns,
	}
}

func (c *Config) storageConfig() storage.Config {
	return storage.Config{
		Type:    c.Storage.Type,
		BaseDir: c.Storage.BaseDir,
		S3: storage.S3Config{
			Bucket:    c.Storage.S3Bucket,
			Region:    c.Storage.S3Region,
			Endpoint:  c.Storage.S3Endpoint,
			AccessKey: c.Storage.S3AccessKey,
			SecretKey: c.Storage.S3SecretKey,
		},
	}
}
