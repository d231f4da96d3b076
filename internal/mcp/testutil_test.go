package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/klauspost/compress/zip"
	"github.com/mark3labs/mcp-go/mcp"
)

// createTestZip creates a simple test zip file with the given files.
func createTestZip(t *testing.T, zipPath string, files map[string]string) {
	t.Helper()

	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	defer w.Close()

	for path, content := range files {
		f, err := w.Create(path)
		if err != nil {
			t.Fatalf("failed to create file %s in zip: %v", path, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write content to %s: %v", path, err)
		}
	}
}

// setupTestServer returns a server whose workdir holds a real zip for every
// catalog entry, using the native extractor.
func setupTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	work := t.TempDir()
	for _, e := range catalog.Entries() {
		createTestZip(t, filepath.Join(work, e.Archive), map[string]string{
			"sheet.txt": "sheet " + e.Code,
		})
	}

	cfg := core.DefaultConfig()
	cfg.Extract.Mode = core.ModeNative
	cfg.Extract.WorkDir = work

	srv, err := NewServer(cfg, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, work
}

// newTestRequest creates a CallToolRequest for testing
func newTestRequest(arguments map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: arguments,
		},
	}
}

// getResultText extracts the text from a CallToolResult for testing
func getResultText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := mcp.AsTextContent(result.Content[0]); ok {
		return textContent.Text
	}
	return ""
}
