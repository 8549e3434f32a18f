// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overrides, ignored when absent
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one. Paths cover
// running from the repo root, cmd/risk-engine and package test directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "risk-engine"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Database.Redis.TTL == 0 {
		cfg.Database.Redis.TTL = 900
	}

	if cfg.Engine.RiskLevels.Medium == 0 {
		cfg.Engine.RiskLevels.Medium = 30
	}
	if cfg.Engine.RiskLevels.High == 0 {
		cfg.Engine.RiskLevels.High = 60
	}
	if cfg.Engine.RiskLevels.Critical == 0 {
		cfg.Engine.RiskLevels.Critical = 80
	}
	if cfg.Engine.ActionableCutoff == 0 {
		cfg.Engine.ActionableCutoff = 50
	}
	if cfg.Engine.SimilarityThreshold == 0 {
		cfg.Engine.SimilarityThreshold = 0.6
	}
	if cfg.Engine.TrendTolerance == 0 {
		cfg.Engine.TrendTolerance = 2
	}
	if cfg.Engine.BatchWorkers == 0 {
		cfg.Engine.BatchWorkers = 8
	}

	if cfg.Training.MaxEpochs == 0 {
		cfg.Training.MaxEpochs = 500
	}
	if cfg.Training.LearningRate == 0 {
		cfg.Training.LearningRate = 0.1
	}
	if cfg.Training.ValidationSplit == 0 {
		cfg.Training.ValidationSplit = 0.2
	}
	if cfg.Training.MinSamples == 0 {
		cfg.Training.MinSamples = 20
	}
	if cfg.Training.EarlyStopDelta == 0 {
		cfg.Training.EarlyStopDelta = 1e-5
	}

	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9102"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	rl := cfg.Engine.RiskLevels
	if !(0 < rl.Medium && rl.Medium < rl.High && rl.High < rl.Critical && rl.Critical <= 100) {
		return fmt.Errorf("risk level cutoffs must satisfy 0 < medium < high < critical <= 100, got %v/%v/%v",
			rl.Medium, rl.High, rl.Critical)
	}
	if cfg.Engine.SimilarityThreshold < 0 || cfg.Engine.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", cfg.Engine.SimilarityThreshold)
	}
	if cfg.Training.ValidationSplit <= 0 || cfg.Training.ValidationSplit >= 1 {
		return fmt.Errorf("validation_split must be in (0,1), got %v", cfg.Training.ValidationSplit)
	}
	if cfg.Training.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %v", cfg.Training.LearningRate)
	}
	return nil
}
