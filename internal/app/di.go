// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/sessiontoken/internal/config"
	"github.com/allisson/sessiontoken/internal/http"
	"github.com/allisson/sessiontoken/internal/metrics"
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
	tokenService "github.com/allisson/sessiontoken/internal/token/service"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	metricsServer   *http.MetricsServer

	// Key material and the transform built from it
	keyMaterial tokenDomain.KeyMaterial
	transformer tokenService.Transformer

	// Metrics
	operationMetrics metrics.OperationMetrics

	// Initialization flags and mutex for thread-safety
	mu                   sync.Mutex
	loggerInit           sync.Once
	keyMaterialInit      sync.Once
	transformerInit      sync.Once
	metricsProviderInit  sync.Once
	operationMetricsInit sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// KeyMaterial returns the session token key material loaded from the environment.
// The material is loaded and validated on first access.
func (c *Container) KeyMaterial() (tokenDomain.KeyMaterial, error) {
	c.keyMaterialInit.Do(func() {
		km, err := tokenService.LoadKeyMaterial()
		if err != nil {
			c.initErrors["keyMaterial"] = err
			return
		}
		c.keyMaterial = km
	})
	if storedErr, exists := c.initErrors["keyMaterial"]; exists {
		return tokenDomain.KeyMaterial{}, storedErr
	}
	return c.keyMaterial, nil
}

// Transformer returns the session token transform.
// When metrics are enabled the transform is wrapped with the metrics decorator.
func (c *Container) Transformer() (tokenService.Transformer, error) {
	c.transformerInit.Do(func() {
		transformer, err := c.initTransformer()
		if err != nil {
			c.initErrors["transformer"] = err
			return
		}
		c.transformer = transformer
	})
	if storedErr, exists := c.initErrors["transformer"]; exists {
		return nil, storedErr
	}
	return c.transformer, nil
}

// MetricsProvider returns the metrics provider instance.
// Returns nil without error when metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// OperationMetrics returns the operation metrics recorder.
// A no-op implementation is returned when metrics are disabled.
func (c *Container) OperationMetrics() (metrics.OperationMetrics, error) {
	c.operationMetricsInit.Do(func() {
		operationMetrics, err := c.initOperationMetrics()
		if err != nil {
			c.initErrors["operationMetrics"] = err
			return
		}
		c.operationMetrics = operationMetrics
	})
	if storedErr, exists := c.initErrors["operationMetrics"]; exists {
		return nil, storedErr
	}
	return c.operationMetrics, nil
}

// MetricsServer returns the HTTP server that exposes the Prometheus endpoint.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		server, err := c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = server
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush and shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Zero key material if loaded
	c.keyMaterial.Close()

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initTransformer builds the transform from the loaded key material and wraps
// it with the metrics decorator.
func (c *Container) initTransformer() (tokenService.Transformer, error) {
	km, err := c.KeyMaterial()
	if err != nil {
		return nil, fmt.Errorf("failed to get key material for transformer: %w", err)
	}

	transform, err := tokenService.NewTransform(km, tokenService.WithLogger(c.Logger()))
	if err != nil {
		return nil, fmt.Errorf("failed to create transform: %w", err)
	}

	operationMetrics, err := c.OperationMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get operation metrics for transformer: %w", err)
	}

	return tokenService.NewTransformWithMetrics(transform, operationMetrics), nil
}

// initOperationMetrics creates the operation metrics recorder.
func (c *Container) initOperationMetrics() (metrics.OperationMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for operation metrics: %w", err)
	}

	if provider == nil {
		return metrics.NewNoOpOperationMetrics(), nil
	}

	operationMetrics, err := metrics.NewOperationMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation metrics: %w", err)
	}

	return operationMetrics, nil
}

// initMetricsServer creates the metrics HTTP server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.MetricsHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
