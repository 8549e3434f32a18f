// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Training TrainingConfig `mapstructure:"training"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // seconds, latest-assessment cache
}

// EngineConfig tunes the risk engine. The level cutoffs here are the single
// canonical threshold table: nothing else in the system may define its own.
type EngineConfig struct {
	RiskLevels          RiskLevelCutoffs `mapstructure:"risk_levels"`
	ActionableCutoff    float64          `mapstructure:"actionable_cutoff"`
	SimilarityThreshold float64          `mapstructure:"similarity_threshold"`
	TrendTolerance      float64          `mapstructure:"trend_tolerance"`
	BatchWorkers        int              `mapstructure:"batch_workers"`
}

// RiskLevelCutoffs are the lower bounds of Medium, High and Critical.
type RiskLevelCutoffs struct {
	Medium   float64 `mapstructure:"medium"`
	High     float64 `mapstructure:"high"`
	Critical float64 `mapstructure:"critical"`
}

// TrainingConfig tunes the dropout classifier's training loop.
type TrainingConfig struct {
	MaxEpochs       int     `mapstructure:"max_epochs"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	ValidationSplit float64 `mapstructure:"validation_split"`
	MinSamples      int     `mapstructure:"min_samples"`
	EarlyStopDelta  float64 `mapstructure:"early_stop_delta"`
}

// ServerConfig holds settings for the metrics/health endpoint and the
// scheduled reassessment sweep.
type ServerConfig struct {
	MetricsAddr      string `mapstructure:"metrics_addr"`
	SweepIntervalMin int    `mapstructure:"sweep_interval_min"` // 0 disables the sweep
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
