// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for tunable training/arena defaults.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// init loads a .env file if present; godotenv.Load silently no-ops when the
// file is absent, so real environment variables still take effect.
func init() {
	_ = godotenv.Load()
}

// =============================================================================
// ARENA CONFIGURATION
// =============================================================================

// ArenaConfig holds the default battlefield dimensions shared by every
// match the orchestrator constructs.
type ArenaConfig struct {
	Width             float64
	Height            float64
	GroundHeightRatio float64
}

// DefaultArena returns the built-in battlefield defaults.
func DefaultArena() ArenaConfig {
	return ArenaConfig{Width: 2000, Height: 1000, GroundHeightRatio: 0.5}
}

// ArenaFromEnv returns arena configuration with environment variable
// overrides.
func ArenaFromEnv() ArenaConfig {
	cfg := DefaultArena()

	if w := getEnvFloat("ARENA_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("ARENA_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}

	return cfg
}

// =============================================================================
// WORKER POOL CONFIGURATION
// =============================================================================

// WorkerConfig controls the evaluation pipeline's parallelism.
type WorkerConfig struct {
	Count int // 0 means runtime.NumCPU at pool construction time
}

// WorkerFromEnv returns worker configuration with environment variable
// overrides.
func WorkerFromEnv() WorkerConfig {
	return WorkerConfig{Count: getEnvInt("WORKER_COUNT", 0)}
}

// =============================================================================
// TRAINING ORCHESTRATOR CONFIGURATION
// =============================================================================

// TrainingConfig controls the orchestrator's default run shape.
type TrainingConfig struct {
	DataRoot     string
	Population   int
	Generations  int
	PhaseSeeds   int
	EloOpponents int
}

// DefaultTraining returns the built-in training defaults.
func DefaultTraining() TrainingConfig {
	return TrainingConfig{
		DataRoot:     "./data",
		Population:   16,
		Generations:  20,
		PhaseSeeds:   6,
		EloOpponents: 4,
	}
}

// TrainingFromEnv returns training configuration with environment variable
// overrides.
func TrainingFromEnv() TrainingConfig {
	cfg := DefaultTraining()

	if v := os.Getenv("DATA_ROOT"); v != "" {
		cfg.DataRoot = v
	}
	if v := getEnvInt("POPULATION", 0); v > 0 {
		cfg.Population = v
	}
	if v := getEnvInt("GENERATIONS", 0); v > 0 {
		cfg.Generations = v
	}
	if v := getEnvInt("PHASE_SEEDS", 0); v > 0 {
		cfg.PhaseSeeds = v
	}
	if v := getEnvInt("ELO_OPPONENTS", 0); v > 0 {
		cfg.EloOpponents = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the ambient status/observability HTTP surface's
// settings: /healthz, /metrics, /training/status.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{Port: 8090}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Arena    ArenaConfig
	Worker   WorkerConfig
	Training TrainingConfig
	Server   ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Arena:    ArenaFromEnv(),
		Worker:   WorkerFromEnv(),
		Training: TrainingFromEnv(),
		Server:   ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
