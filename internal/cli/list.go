package cli

import (
	"fmt"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sheet catalog",
	Long:  `Lists every sheet code with its archive and destination folder, in extraction order.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	entries := catalog.Entries()

	if flagJSON {
		return outputJSON(map[string]interface{}{
			"entries": entries,
		})
	}

	fmt.Printf("%-6s %-14s %s\n", "CODE", "ARCHIVE", "FOLDER")
	for _, e := range entries {
		fmt.Printf("%-6s %-14s %s\n", e.Code, e.Archive, e.Folder)
	}

	return nil
}
