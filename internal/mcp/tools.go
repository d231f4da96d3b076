package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// handleList implements unsheet_list.
func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"entries": catalog.Entries(),
	}), nil
}

// handleStatus implements unsheet_status.
func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := catalog.Select(request.GetStringSlice("codes", nil)...)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	statuses, err := core.Inspect(s.cfg.Extract.WorkDir, entries)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	return jsonResult(map[string]interface{}{
		"workdir": s.cfg.Extract.WorkDir,
		"sheets":  statuses,
	}), nil
}

// handleExtract implements unsheet_extract.
func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := catalog.Select(request.GetStringSlice("codes", nil)...)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	// Per-call overrides must not leak into the shared config.
	cfg := *s.cfg
	args := request.GetArguments()
	if native, ok := args["native"].(bool); ok {
		cfg.Extract.Mode = core.ModeTool
		if native {
			cfg.Extract.Mode = core.ModeNative
		}
	}
	if overwrite, ok := args["overwrite"].(bool); ok {
		cfg.Extract.Overwrite = overwrite
	}

	driver, err := core.NewDriverFromConfig(&cfg, s.dataDir, s.logger)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	report, err := driver.Run(ctx, entries)
	if err != nil {
		s.logger.Warn("extract tool call failed", zap.Error(err))
		return reportErrorResult(err, report), nil
	}

	return jsonResult(report), nil
}

// handleVerify implements unsheet_verify.
func (s *Server) handleVerify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := catalog.Select(request.GetStringSlice("codes", nil)...)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	results, err := core.Verify(s.cfg.Extract.WorkDir, entries)
	if err != nil {
		return mcpErrorResult(err), nil
	}

	return jsonResult(map[string]interface{}{
		"workdir": s.cfg.Extract.WorkDir,
		"sheets":  results,
	}), nil
}

// mcpErrorResult converts an error into an MCP error result using its code.
func mcpErrorResult(err error) *mcp.CallToolResult {
	code := errors.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	return errorResult(code, err.Error())
}

// reportErrorResult is mcpErrorResult with the partial run report attached.
func reportErrorResult(err error, report *core.Report) *mcp.CallToolResult {
	code := errors.Code(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	data := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": err.Error(),
		},
		"report": report,
	}

	jsonBytes, mErr := json.Marshal(data)
	if mErr != nil {
		return errorResult(code, err.Error())
	}

	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// errorResult creates an MCP error result.
func errorResult(code, message string) *mcp.CallToolResult {
	errorData := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}

	jsonBytes, err := json.Marshal(errorData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %s - %s", code, message))
	}

	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// jsonResult creates an MCP success result from a JSON-serializable object.
func jsonResult(data interface{}) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return errorResult("INTERNAL_ERROR", fmt.Sprintf("failed to marshal response: %s", err))
	}

	return mcp.NewToolResultText(string(jsonBytes))
}
