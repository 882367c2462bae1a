// Package tools registers the BizniWeb MCP tools and shapes their results.
//
// Every handler returns exactly one of a success payload or an {"error": ...}
// payload, always inside a text result. Failures never surface as MCP
// protocol errors; the host agent sees a JSON blob either way.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vzeman/biznisweb-mcp-server/internal/logging"
)

// Registration pairs a tool definition with its handler.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// RegisterAll adds every registration to the server, wrapping each handler
// with invocation logging.
func RegisterAll(s *server.MCPServer, logger logging.Logger, regs []Registration) {
	for _, reg := range regs {
		s.AddTool(reg.Tool, withInvocationLog(reg.Tool.Name, logger, reg.Handler))
	}
}

// withInvocationLog tags each call with a generated invocation id and logs
// start and completion with duration.
func withInvocationLog(name string, logger logging.Logger, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := logger.With(map[string]interface{}{
			"tool":          name,
			"invocation_id": uuid.NewString(),
		})
		log.Info("tool invocation started", nil)

		start := time.Now()
		result, err := next(ctx, req)
		if err != nil {
			// Handlers report failures inside the payload; a non-nil
			// error here means something bypassed that contract.
			log.Error("tool invocation failed", map[string]interface{}{
				"error":    err.Error(),
				"duration": time.Since(start).String(),
			})
			return ErrorResult(err.Error()), nil
		}

		log.Info("tool invocation completed", map[string]interface{}{
			"duration": time.Since(start).String(),
		})
		return result, nil
	}
}

// JSONResult serializes v as indented JSON inside a text result.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("serialize result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult wraps a message in the catalog's uniform error payload.
func ErrorResult(msg string) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(map[string]string{"error": msg}, "", "  ")
	return mcp.NewToolResultText(string(data))
}
