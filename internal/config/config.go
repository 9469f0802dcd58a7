// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	appvalidation "github.com/allisson/sessiontoken/internal/validation"
)

// Config holds all application configuration.
//
// Key material itself is not part of this struct: encryption and signing keys
// are loaded separately by the token domain so that raw key bytes never travel
// through general-purpose configuration plumbing.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// CipherAlgorithm is the block cipher used for session tokens.
	CipherAlgorithm string
	// MACAlgorithm is the keyed hash used for session tokens.
	MACAlgorithm string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsHost is the host address the metrics server will bind to.
	MetricsHost string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// BenchWorkers is the default number of concurrent workers for the bench command.
	BenchWorkers int
	// BenchIterations is the default number of encode/decode rounds per worker.
	BenchIterations int
	// BenchRatePerSec caps bench operations per second (0 disables the limiter).
	BenchRatePerSec float64
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Token algorithms
		CipherAlgorithm: env.GetString("CIPHER_ALGORITHM", "aes-256-cbc"),
		MACAlgorithm:    env.GetString("MAC_ALGORITHM", "hmac-sha256"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "sessiontoken"),
		MetricsHost:      env.GetString("METRICS_HOST", "0.0.0.0"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Bench defaults
		BenchWorkers:    env.GetInt("BENCH_WORKERS", 4),
		BenchIterations: env.GetInt("BENCH_ITERATIONS", 10000),
		BenchRatePerSec: env.GetFloat64("BENCH_RATE_PER_SEC", 0),
	}
}

// Validate checks the configuration values against the supported sets.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, appvalidation.LogLevel),
		validation.Field(&c.CipherAlgorithm, validation.Required, appvalidation.CipherAlgorithm),
		validation.Field(&c.MACAlgorithm, validation.Required, appvalidation.MACAlgorithm),
		validation.Field(&c.MetricsNamespace, validation.Required, appvalidation.NotBlank),
		validation.Field(&c.MetricsPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.BenchWorkers, validation.Required, validation.Min(1)),
		validation.Field(&c.BenchIterations, validation.Required, validation.Min(1)),
		validation.Field(&c.BenchRatePerSec, validation.Min(0.0)),
	)
	return appvalidation.WrapValidationError(err)
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
