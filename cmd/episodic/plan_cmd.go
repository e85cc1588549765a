package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevanw/episodic/internal/catalog"
	"github.com/sevanw/episodic/internal/config"
	"github.com/sevanw/episodic/internal/logging"
	"github.com/sevanw/episodic/internal/matcher"
	"github.com/sevanw/episodic/internal/parser"
	"github.com/sevanw/episodic/internal/plan"
	"github.com/sevanw/episodic/internal/scanner"
	"github.com/sevanw/episodic/internal/tvmaze"
	"github.com/sevanw/episodic/internal/ui"
)

func newPlanCmd() *cobra.Command {
	var (
		show      string
		template  string
		offline   bool
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "plan <directory>",
		Short: "Build a rename plan for a directory of episodes",
		Long: `Scan a directory, parse every episode filename, match it against the
show's episode catalog, and save a rename plan for review.

Nothing is renamed; run 'episodic apply' to execute the saved plan.

Examples:
  episodic plan /tv/Show.Name.S02
  episodic plan /tv/incoming --show "Show Name"
  episodic plan /tv/incoming --offline   # skip the catalog lookup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root := args[0]

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

			scanOpts := scanner.Options{
				Extensions: cfg.Scan.Extensions,
				Recursive:  recursive && cfg.Scan.Recursive,
			}
			scanRes, err := scanner.Scan(ctx, root, scanOpts)
			if err != nil {
				return err
			}
			log.Info("plan", "scan finished",
				logging.F("files", len(scanRes.Files)),
				logging.F("skipped", scanRes.FilesSkipped))
			if len(scanRes.Files) == 0 {
				return fmt.Errorf("no video files found under %s", root)
			}
			fmt.Printf("Found %d video files (%s)\n",
				len(scanRes.Files), ui.FormatBytes(scanRes.TotalBytes))

			parsed := make([]parser.ParsedName, len(scanRes.Files))
			for i, path := range scanRes.Files {
				parsed[i] = parser.Parse(path)
			}

			ix, resolvedShow := buildIndex(ctx, parsed, show, offline)
			if resolvedShow != "" {
				show = resolvedShow
			}

			results := matcher.MatchAll(parsed, ix, matcherOptions(cfg))

			p := plan.Build(results, tmpl, show)
			if err := plan.Save(p); err != nil {
				return fmt.Errorf("saving plan: %w", err)
			}

			ui.PrintPlan(p)
			ui.PrintAmbiguities(results)
			fmt.Println("\nRun 'episodic apply' to execute this plan.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&show, "show", "s", "", "series title (default: parsed from filenames)")
	cmd.Flags().StringVarP(&template, "template", "t", "", "naming template override")
	cmd.Flags().BoolVar(&offline, "offline", false, "build the plan from parsed fields only")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "scan subdirectories")

	return cmd
}

func matcherOptions(cfg *config.Config) matcher.Options {
	opts := matcher.DefaultOptions()
	if cfg.Matching.AcceptThreshold > 0 {
		opts.AcceptThreshold = cfg.Matching.AcceptThreshold
	}
	if cfg.Matching.AmbiguityMargin > 0 {
		opts.AmbiguityMargin = cfg.Matching.AmbiguityMargin
	}
	if cfg.Matching.Floor > 0 {
		opts.Floor = cfg.Matching.Floor
	}
	if cfg.Matching.MaxCandidates > 0 {
		opts.MaxCandidates = cfg.Matching.MaxCandidates
	}
	return opts
}

// buildIndex fetches the episode catalog for the show, guessing the title
// from the parsed filenames when none was given. A failed lookup degrades to
// offline planning instead of aborting.
func buildIndex(ctx context.Context, parsed []parser.ParsedName, show string, offline bool) (*catalog.Index, string) {
	if offline {
		return nil, ""
	}

	query := show
	if query == "" {
		query = guessShow(parsed)
	}
	if query == "" {
		ui.WarningMsg("no show title to look up; planning offline")
		return nil, ""
	}

	client := tvmaze.NewClient(tvmaze.Config{
		Timeout: time.Duration(cfg.Catalog.TimeoutSeconds) * time.Second,
	})
	found, entries, err := client.EpisodesByName(ctx, query)
	if err != nil {
		if errors.Is(err, tvmaze.ErrShowNotFound) {
			ui.WarningMsg("no catalog entry for %q; planning offline", query)
		} else {
			ui.WarningMsg("catalog lookup failed (%v); planning offline", err)
		}
		log.Warn("plan", "catalog lookup failed", logging.F("show", query), logging.F("error", err))
		return nil, ""
	}

	ix, err := catalog.BuildIndex(entries)
	if err != nil {
		ui.WarningMsg("catalog unusable (%v); planning offline", err)
		log.Warn("plan", "catalog index failed", logging.F("show", found.Name), logging.F("error", err))
		return nil, ""
	}

	log.Info("plan", "catalog loaded",
		logging.F("show", found.Name),
		logging.F("episodes", len(entries)))
	return ix, found.Name
}

// guessShow picks the most common parsed title across the batch.
func guessShow(parsed []parser.ParsedName) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, p := range parsed {
		title := parser.PolishTitle(p.ShowTitle)
		if title == "" {
			continue
		}
		counts[title]++
		if counts[title] > bestCount {
			best, bestCount = title, counts[title]
		}
	}
	return best
}
