package cli

import (
	"fmt"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [<code>...]",
	Short: "Compare extracted folders with their archives",
	Long: `Compares each extracted folder with the archive it came from, like git
status: files modified since extraction, files added to the folder and
archive files missing from it. Content is compared by size and CRC-32.

Exits non-zero if any folder differs from its archive.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	entries, err := catalog.Select(args...)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	results, err := core.Verify(cfg.Extract.WorkDir, entries)
	if err != nil {
		return err
	}

	dirty := 0
	for _, r := range results {
		if !r.Clean() {
			dirty++
		}
	}

	if flagJSON {
		if err := outputJSON(map[string]interface{}{
			"workdir": cfg.Extract.WorkDir,
			"sheets":  results,
		}); err != nil {
			return err
		}
	} else {
		printVerify(results)
	}

	if dirty > 0 {
		return fmt.Errorf("%d sheet(s) differ from their archives", dirty)
	}
	return nil
}

func printVerify(results []*core.VerifyResult) {
	for _, r := range results {
		if r.Clean() {
			if !flagQuiet {
				fmt.Printf("%s  %s: clean (%d file(s))\n", r.Code, r.Folder, r.UnchangedCount)
			}
			continue
		}

		fmt.Printf("%s  %s:\n", r.Code, r.Folder)
		for _, path := range r.Modified {
			fmt.Printf("  M %s\n", path)
		}
		for _, path := range r.Added {
			fmt.Printf("  A %s\n", path)
		}
		for _, path := range r.Missing {
			fmt.Printf("  D %s\n", path)
		}
	}
}
