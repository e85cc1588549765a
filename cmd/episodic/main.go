package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevanw/episodic/internal/config"
	"github.com/sevanw/episodic/internal/logging"
	"github.com/sevanw/episodic/internal/ui"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"

	dryRun    bool
	verbose   bool
	noColor   bool
	assumeYes bool

	cfg *config.Config
	log = logging.Nop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "episodic",
		Short: "Batch renamer for TV episode files",
		Long: `Episodic parses messy episode filenames, verifies them against an online
episode catalog, and renames whole seasons in one reviewed, reversible batch.

Workflow:
  episodic plan /tv/Show.Name.S02     # parse, match, build a rename plan
  episodic apply                      # review and execute the saved plan
  episodic undo                       # revert the last applied batch`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				ui.DisableColors()
			}

			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			logCfg := logging.Config{
				Level:      cfg.Logging.Level,
				File:       cfg.Logging.File,
				MaxSizeMB:  cfg.Logging.MaxSizeMB,
				MaxBackups: cfg.Logging.MaxBackups,
			}
			if verbose {
				logCfg.Level = "debug"
			}
			logger, err := logging.New(logCfg)
			if err != nil {
				// The engine still works without a log file.
				fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
				logger = logging.Nop()
			}
			log = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "preview changes without renaming files")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("episodic %s\n", version)
		},
	}
}
