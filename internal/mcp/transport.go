package mcp

import (
	"context"
	"fmt"

	"github.com/Fuabioo/unsheet/internal/core"
	"go.uber.org/zap"
)

// Serve builds a Server from cfg and serves it on stdio until ctx is done
// or stdin closes. Logs must not go to stdout, which carries the protocol.
func Serve(ctx context.Context, cfg *core.Config, dataDir string, logger *zap.Logger) error {
	srv, err := NewServer(cfg, dataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
