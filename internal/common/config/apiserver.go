package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	// APIServerConfig is the root configuration for the FlowSight API server.
	APIServerConfig struct {
		Port     int            `yaml:"port"`
		Database DatabaseConfig `yaml:"database"`
		OpenAI   OpenAIConfig   `yaml:"openai"`
		Redis    RedisConfig    `yaml:"redis"`
		Logger   LoggerConfig   `yaml:"logger"`
		JWT      JWTConfig      `yaml:"jwt"`
		Metrics  MetricsConfig  `yaml:"metrics"`
		SeedDemo bool           `yaml:"seed_demo"` // seed the demo workspace on startup
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (mysql), 5432 (postgres)
		User     string `yaml:"user"`     // root (mysql), postgres (postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (postgres)
	}

	OpenAIConfig struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	}

	// RedisConfig configures the cache for generated AI insights.
	// An empty Addr disables caching.
	RedisConfig struct {
		Addr     string        `yaml:"addr"`
		Username string        `yaml:"username"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}
)

func (c *APIServerConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 5310
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 7 * 24 * time.Hour
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = 10 * time.Minute
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "flowsight"
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		// Ensure the directory for the SQLite database exists.
		if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
			panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
		}
		return c.DBName // For SQLite, DBName is the file path
	default:
		return ""
	}
}

func (c *DatabaseConfig) getPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}
