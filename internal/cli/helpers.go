package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/Fuabioo/unsheet/internal/logging"
)

// outputJSON marshals and prints JSON to stdout.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// getExitCode maps error codes to CLI exit codes.
func getExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errors.Code(err) {
	case errors.CodeExtractFailed:
		return 2
	case errors.CodeLocked:
		return 3
	case errors.CodeUnknownCode:
		return 4
	default:
		// Usage, config and anything not produced by unsheet
		return 1
	}
}

// loadConfig resolves the data directory, loads the layered configuration,
// applies command-line overrides and initializes logging.
func loadConfig() (*core.Config, string, error) {
	dataDir, err := core.DataDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get data directory: %w", err)
	}

	cfg, err := core.LoadConfig(dataDir, flagConfig)
	if err != nil {
		return nil, "", err
	}

	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	logging.InitializeStderr(cfg.Log)
	return cfg, dataDir, nil
}

// applyFlags overlays flags that were set on the command line.
func applyFlags(cfg *core.Config) {
	if flagWorkDir != "" {
		cfg.Extract.WorkDir = flagWorkDir
	}
	if flagNative {
		cfg.Extract.Mode = core.ModeNative
	}
	if flagTool != "" {
		cfg.Extract.Mode = core.ModeTool
		cfg.Extract.Tool = flagTool
	}
	if flagOverwrite {
		cfg.Extract.Overwrite = true
	}

	switch {
	case flagVerbose:
		cfg.Log.Level = "debug"
	case flagQuiet:
		cfg.Log.Level = "warn"
	}
}

// printError prints an error to stderr with appropriate formatting.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func syncLogger() {
	logging.Sync()
}
