package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevanw/episodic/internal/executor"
	"github.com/sevanw/episodic/internal/logging"
	"github.com/sevanw/episodic/internal/matcher"
	"github.com/sevanw/episodic/internal/parser"
	"github.com/sevanw/episodic/internal/plan"
	"github.com/sevanw/episodic/internal/ui"
	"github.com/sevanw/episodic/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		show     string
		template string
		offline  bool
		settle   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Watch directories and rename new episodes automatically",
		Long: `Monitor directories for new video files and rename each one as it
settles, using the same parse-match-plan pipeline as 'episodic plan'.

Files the matcher cannot place confidently are left alone and logged.
Directories default to the watch.directories config entry.

Examples:
  episodic watch /tv/incoming --show "Show Name"
  episodic watch -n   # log what would be renamed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				dirs = cfg.Watch.Directories
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no directories to watch (pass one or set watch.directories)")
			}

			if show == "" {
				show = cfg.Naming.Show
			}
			if template == "" {
				template = cfg.Naming.Template
			}
			tmpl, err := plan.ParseTemplate(template)
			if err != nil {
				return err
			}
			if settle == 0 {
				settle = time.Duration(cfg.Watch.SettleSeconds) * time.Second
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler := func(path string) {
				handleSettledFile(ctx, path, tmpl, show, offline)
			}

			w, err := watcher.New(handler, log,
				watcher.WithSettle(settle),
				watcher.WithExtensions(cfg.Scan.Extensions),
			)
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer w.Close()

			if err := w.Watch(dirs); err != nil {
				return fmt.Errorf("setting up watch: %w", err)
			}

			if dryRun {
				fmt.Println("Mode: DRY RUN (no files will be renamed)")
			}
			fmt.Println("Press Ctrl+C to stop")

			err = w.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&show, "show", "s", "", "series title (default: parsed from filenames)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "naming template override")
	cmd.Flags().BoolVar(&offline, "offline", false, "rename from parsed fields only")
	cmd.Flags().DurationVar(&settle, "settle", 0, "quiet period before a new file is processed")

	return cmd
}

// handleSettledFile runs the single-file pipeline. Ambiguous and unmatched
// files are left for an interactive 'episodic plan' run.
func handleSettledFile(ctx context.Context, path string, tmpl *plan.Template, show string, offline bool) {
	parsed := []parser.ParsedName{parser.Parse(path)}

	ix, resolvedShow := buildIndex(ctx, parsed, show, offline)
	if resolvedShow != "" {
		show = resolvedShow
	}

	results := matcher.MatchAll(parsed, ix, matcherOptions(cfg))
	if !offline && results[0].Outcome != matcher.Matched {
		log.Info("watch", "file needs review, leaving in place",
			logging.F("path", path),
			logging.F("outcome", results[0].Outcome))
		return
	}

	p := plan.Build(results, tmpl, show)
	if p.Pending() == 0 {
		log.Debug("watch", "nothing to do", logging.F("path", path))
		return
	}

	if dryRun {
		report, err := executor.DryRun(p)
		if err != nil {
			log.Warn("watch", "preflight failed", logging.F("path", path), logging.F("error", err))
			return
		}
		ui.PrintReport(report)
		return
	}

	report, err := executor.Execute(ctx, p)
	if err != nil {
		log.Error("watch", "rename failed", err, logging.F("path", path))
		return
	}
	ui.PrintReport(report)
	recordBatch(p, report)
}
