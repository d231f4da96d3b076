package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fuabioo/unsheet/internal/catalog"
	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/Fuabioo/unsheet/internal/logging"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [<code>...]",
	Short: "Extract sheet archives",
	Long: `Extracts sheet<code>.zip into its folder for each given code, or for the
whole catalog when no code is given.

Sheets are processed in catalog order, one at a time. The first failure
stops the run and later sheets are not attempted.

By default the external unzip tool is invoked as
  unzip sheet<code>.zip -d <folder>
Use --native to extract in-process instead.

Exit codes: 0 success, 2 extraction failed, 3 workdir locked,
4 unknown sheet code, 1 anything else.`,
	Example: `  unsheet extract
  unsheet extract 01 04
  unsheet extract --native --overwrite -C ~/course`,
	RunE: runExtract,
}

func init() {
	addExtractFlags(extractCmd)
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagNative, "native", false, "Extract in-process instead of running the external tool")
	cmd.Flags().StringVar(&flagTool, "tool", "", "External extraction tool (default from config, \"unzip\")")
	cmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "Overwrite existing files without prompting")
	cmd.MarkFlagsMutuallyExclusive("native", "tool")
}

func runExtract(cmd *cobra.Command, args []string) error {
	entries, err := catalog.Select(args...)
	if err != nil {
		return err
	}

	cfg, dataDir, err := loadConfig()
	if err != nil {
		return err
	}

	driver, err := core.NewDriverFromConfig(cfg, dataDir, logging.Get())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := driver.Run(ctx, entries)

	if flagJSON {
		if report != nil {
			if err := outputJSON(report); err != nil {
				return err
			}
		}
		return runErr
	}

	if report != nil && !flagQuiet {
		printReport(report)
	}
	return runErr
}

func printReport(report *core.Report) {
	for _, r := range report.Completed {
		fmt.Printf("  ok    %s  %s -> %s (%s)\n", r.Code, r.Archive, r.Folder, r.Duration.Round(time.Millisecond))
	}
	if r := report.Failed; r != nil {
		fmt.Printf("  FAIL  %s  %s -> %s\n", r.Code, r.Archive, r.Folder)
	}

	fmt.Printf("\n%d sheet(s) extracted in %s using %s\n",
		len(report.Completed), report.Duration.Round(time.Millisecond), report.Extractor)
}
