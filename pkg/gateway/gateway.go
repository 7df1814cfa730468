// Package gateway provides a reusable BLE broadcast gateway that can be
// embedded into other Go applications.
package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/lei/ble-gateway/internal/api"
	"github.com/lei/ble-gateway/internal/auth"
	"github.com/lei/ble-gateway/internal/broadcast"
	"github.com/lei/ble-gateway/internal/config"
	"github.com/lei/ble-gateway/internal/udp"
	"github.com/lei/ble-gateway/pkg/logger"
)

// Gateway represents a BLE broadcast gateway instance
type Gateway struct {
	config     *Config
	controller *broadcast.Controller
	router     http.Handler
	server     *http.Server
	logger     *logger.Logger
}

// Config holds the configuration for the Gateway
type Config struct {
	// Server configuration
	Server ServerConfig

	// Authentication configuration
	Auth AuthConfig

	// Broadcast configuration
	Broadcast BroadcastConfig

	// Logger configuration
	Logging LoggingConfig

	// Runner overrides the advertising-control command runner. Leave nil to
	// use the btmgmt runner built from the Broadcast configuration.
	Runner broadcast.Runner
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address      string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// BearerToken is the shared secret expected on every mutating request
	BearerToken string
}

// BroadcastConfig holds advertising-control configuration
type BroadcastConfig struct {
	Instance       int
	BtmgmtPath     string
	CommandTimeout time.Duration
	MaxHold        time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New creates a new Gateway instance with the provided configuration
func New(cfg *Config) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Auth.BearerToken == "" {
		return nil, config.ErrMissingToken
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize the advertising-control runner
	runner := cfg.Runner
	if runner == nil {
		path := cfg.Broadcast.BtmgmtPath
		if path == "" {
			path = "btmgmt"
		}
		timeout := cfg.Broadcast.CommandTimeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		runner = broadcast.NewBtmgmtRunner(path, timeout, appLogger)
	}

	instance := cfg.Broadcast.Instance
	if instance == 0 {
		instance = broadcast.DefaultInstance
	}

	controller := broadcast.NewController(runner, cfg.Broadcast.MaxHold, appLogger)
	relay := udp.NewRelay()

	// Initialize API layer
	handlers := api.NewHandlers(controller, relay, instance)
	authMiddleware := api.NewAuthMiddleware(auth.NewGate(cfg.Auth.BearerToken))
	loggingMiddleware := api.NewLoggingMiddleware(appLogger)
	router := api.NewRouter(handlers, authMiddleware, loggingMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Address, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Gateway{
		config:     cfg,
		controller: controller,
		router:     router,
		server:     srv,
		logger:     appLogger,
	}, nil
}

// Start starts the HTTP server. This is a blocking call that runs until the
// context is canceled or an error occurs. On shutdown it first drains the
// HTTP server, then tears down the broadcast controller so any advertisement
// still held gets a best-effort stop before the process exits.
func (g *Gateway) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		g.logger.Info("starting http server", "addr", g.server.Addr)
		serverErrors <- g.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		g.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := g.server.Shutdown(shutdownCtx); err != nil {
			g.server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if err := g.controller.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("broadcast teardown incomplete: %w", err)
		}

		g.logger.Info("server stopped gracefully")
		return nil
	}
}

// Handler returns the http.Handler for the gateway.
// Use this to integrate the gateway into an existing HTTP server.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Controller returns the underlying broadcast controller.
// Use this for direct programmatic access to the advertising lifecycle.
func (g *Gateway) Controller() *broadcast.Controller {
	return g.controller
}

// NewFromEnv creates a Gateway instance from environment variables and an
// optional YAML config file named by CONFIG_FILE
func NewFromEnv() (*Gateway, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return New(&Config{
		Server: ServerConfig{
			Address:      cfg.Server.Address,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		Auth: AuthConfig{
			BearerToken: cfg.Auth.BearerToken,
		},
		Broadcast: BroadcastConfig{
			Instance:       cfg.Broadcast.Instance,
			BtmgmtPath:     cfg.Broadcast.BtmgmtPath,
			CommandTimeout: cfg.Broadcast.CommandTimeout,
			MaxHold:        cfg.Broadcast.MaxHold,
		},
		Logging: LoggingConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		},
	})
}
