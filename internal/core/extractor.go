package core

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Fuabioo/unsheet/internal/errors"
	"github.com/Fuabioo/unsheet/internal/security"
)

// Extractor unpacks one archive into one directory. Stats are nil when the
// back end cannot count what it wrote.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) (*ExtractStats, error)
	Name() string
}

// NewExtractor builds the extractor selected by cfg.Extract.Mode.
func NewExtractor(cfg *Config) (Extractor, error) {
	switch cfg.Extract.Mode {
	case ModeTool:
		return &ToolExtractor{
			Tool:      cfg.Extract.Tool,
			Args:      cfg.Extract.Args,
			Overwrite: cfg.Extract.Overwrite,
		}, nil
	case ModeNative:
		return &NativeExtractor{Limits: cfg.ToSecurityLimits()}, nil
	default:
		return nil, errors.InvalidConfig(fmt.Sprintf("unknown extract mode %q", cfg.Extract.Mode))
	}
}

// ToolExtractor shells out to an unzip-compatible command:
//
//	<tool> [args...] [-o] <archive> -d <directory>
//
// The tool creates the directory itself. Output is captured, stdin is empty.
type ToolExtractor struct {
	Tool      string
	Args      []string
	Overwrite bool
}

// Name implements Extractor.
func (t *ToolExtractor) Name() string {
	return "tool:" + t.Tool
}

// Argv returns the arguments passed to the tool, excluding the tool itself.
func (t *ToolExtractor) Argv(archivePath, destDir string) []string {
	argv := make([]string, 0, len(t.Args)+4)
	argv = append(argv, t.Args...)
	if t.Overwrite {
		argv = append(argv, "-o")
	}
	return append(argv, archivePath, "-d", destDir)
}

// Extract implements Extractor.
func (t *ToolExtractor) Extract(ctx context.Context, archivePath, destDir string) (*ExtractStats, error) {
	argv := t.Argv(archivePath, destDir)

	cmd := exec.CommandContext(ctx, t.Tool, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil, nil
	}

	toolErr := &ToolError{
		Tool:     t.Tool,
		Args:     argv,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
		err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		toolErr.err = fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return nil, toolErr
}

// ToolError reports a failed tool invocation. ExitCode is -1 when the tool
// could not be started or was killed.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.err
}

// NativeExtractor extracts in-process with zip-slip and zip-bomb checks.
type NativeExtractor struct {
	Limits security.Limits
}

// Name implements Extractor.
func (n *NativeExtractor) Name() string {
	return "native"
}

// Extract implements Extractor.
func (n *NativeExtractor) Extract(ctx context.Context, archivePath, destDir string) (*ExtractStats, error) {
	return Extract(ctx, archivePath, destDir, n.Limits)
}
