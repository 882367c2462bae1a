// Command biznisweb-mcp serves the BizniWeb e-shop GraphQL API as MCP tools
// over stdio. Stdout carries the MCP stream; all logging goes to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vzeman/biznisweb-mcp-server/internal/biznisweb"
	"github.com/vzeman/biznisweb-mcp-server/internal/config"
	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
	"github.com/vzeman/biznisweb-mcp-server/internal/stats"
	"github.com/vzeman/biznisweb-mcp-server/internal/telemetry"
	"github.com/vzeman/biznisweb-mcp-server/internal/tools"
)

const (
	serverName    = "biznisweb-mcp"
	serverVersion = "0.1.0"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if !envLoaded {
		logger.Debug("no .env file loaded", nil)
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, cfg, serverName, logger)
	if err != nil {
		logger.Warn("telemetry initialization failed, continuing without traces", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownTelemetry = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	client := biznisweb.NewClient(cfg, logger)
	aggregator := stats.New(client, logger,
		stats.WithPageSize(cfg.Stats.PageSize),
		stats.WithMaxFetched(cfg.Stats.MaxFetched),
		stats.WithExcludedStatuses(cfg.Stats.ExcludedStatuses),
	)

	mcpServer := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	registrations := []tools.Registration{
		tools.ListOrdersTool(client, logger),
		tools.GetOrderTool(client),
		tools.OrderStatisticsTool(aggregator),
		tools.SearchOrdersTool(client, logger),
	}
	tools.RegisterAll(mcpServer, logger, registrations)

	logger.Info("serving MCP on stdio", map[string]interface{}{
		"server":  serverName,
		"version": serverVersion,
		"tools":   len(registrations),
		"api_url": cfg.API.URL,
	})

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("server terminated", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) logging.Logger {
	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Logging.Format == "text" {
		return logging.NewTextLogger(os.Stderr, level)
	}
	return logging.NewJSONLogger(os.Stderr, level)
}
