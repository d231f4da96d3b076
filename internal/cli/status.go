package cli

import (
	"fmt"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [<code>...]",
	Short: "Show which sheets are present and extracted",
	Long: `Shows, for each given code or the whole catalog, whether the archive is
present in the working directory and whether its folder holds files.

Nothing is modified.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	entries, err := catalog.Select(args...)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	statuses, err := core.Inspect(cfg.Extract.WorkDir, entries)
	if err != nil {
		return err
	}

	if flagJSON {
		return outputJSON(map[string]interface{}{
			"workdir": cfg.Extract.WorkDir,
			"sheets":  statuses,
		})
	}

	fmt.Printf("Working directory: %s\n\n", cfg.Extract.WorkDir)

	extracted := 0
	for _, s := range statuses {
		archive := "missing"
		if s.ArchivePresent {
			archive = formatBytes(s.ArchiveSizeBytes)
		}

		folder := "not extracted"
		if s.Extracted() {
			folder = fmt.Sprintf("%d file(s)", s.FolderFiles)
			extracted++
		} else if s.FolderPresent {
			folder = "empty"
		}

		fmt.Printf("  %s  %-14s %-10s %-24s %s\n", s.Code, s.Archive, archive, s.Folder, folder)
	}

	fmt.Printf("\n%d of %d sheet(s) extracted\n", extracted, len(statuses))
	return nil
}

// formatBytes renders a size in human-readable units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
