package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skilletlabs/skillet/pkg/api"
	"github.com/skilletlabs/skillet/pkg/logger"
	"github.com/skilletlabs/skillet/pkg/presenter"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host string
	Port int
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host: "localhost",
		Port: 8080,
	}
}

// Validate validates the serve configuration
func (c *ServeConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Host != "localhost" && c.Host != "0.0.0.0" {
		if ip := net.ParseIP(c.Host); ip == nil {
			if strings.Contains(c.Host, " ") || strings.Contains(c.Host, ":") {
				return errors.Errorf("invalid host: %s", c.Host)
			}
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the skills API over HTTP",
	Long: `Start a local HTTP server exposing discovered skills and linting as a
JSON API:

  GET  /api/skills           List discovered skills
  GET  /api/skills/{name}    Get one skill's full document
  POST /api/lint             Lint targets given in the request body
  GET  /api/version          Server version

The server is available at http://localhost:8080 by default.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		config := getServeConfigFromFlags(cmd)

		if err := config.Validate(); err != nil {
			return err
		}

		disc, err := newDiscoveryFromConfig()
		if err != nil {
			return err
		}

		server, err := api.NewServer(disc, &api.ServerConfig{
			Host: config.Host,
			Port: config.Port,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create API server")
		}

		ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.G(ctx).WithFields(map[string]any{
			"host": config.Host,
			"port": config.Port,
		}).Info("Starting skills API server")
		presenter.Info("Press Ctrl+C to stop the server")

		if err := server.Start(ctx); err != nil {
			return errors.Wrap(err, "API server failed")
		}

		presenter.Info(fmt.Sprintf("Server on %s:%d stopped", config.Host, config.Port))
		return nil
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host to bind the server to")
	serveCmd.Flags().Int("port", defaults.Port, "Port to bind the server to")
}

// getServeConfigFromFlags extracts serve configuration from command flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	if host, err := cmd.Flags().GetString("host"); err == nil {
		config.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}

	return config
}
