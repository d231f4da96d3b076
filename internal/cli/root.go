package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set via ldflags during build
	Version = "dev"
	// Commit is set via ldflags during build
	Commit = "unknown"

	// Global flags
	flagJSON    bool
	flagQuiet   bool
	flagVerbose bool
	flagConfig  string
	flagWorkDir string

	// Extraction flags, shared by the root command and extract
	flagNative    bool
	flagTool      string
	flagOverwrite bool
)

// rootCmd represents the base command when called without any subcommands.
// Run bare, it extracts every sheet in the catalog.
var rootCmd = &cobra.Command{
	Use:   "unsheet",
	Short: "Unpack the exercise sheet archives into their folders",
	Long: `unsheet unpacks sheet<code>.zip archives into correspondingly named
folders, one at a time, stopping at the first failure.

Run without a subcommand it extracts the whole catalog; see "unsheet list"
for the code to folder mapping. It provides both CLI and MCP server
interfaces.`,
	Args:          cobra.NoArgs,
	RunE:          runExtract,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
		exitCode := getExitCode(err)
		syncLogger()
		os.Exit(exitCode)
	}
	syncLogger()
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress non-essential output and lower log verbosity")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVarP(&flagWorkDir, "workdir", "C", "", "Directory holding the archives (default from config, \".\")")

	addExtractFlags(rootCmd)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetVersion returns the version string
func GetVersion() string {
	if len(Commit) >= 7 && Commit != "unknown" {
		return fmt.Sprintf("%s (%s)", Version, Commit[:7])
	}
	return Version
}
