// Package matcher reconciles parsed filenames against the episode catalog.
//
// Matching is three-tiered: exact (season, episode) lookup, then confident
// fuzzy title recovery, then an explicit Ambiguous outcome when the fuzzy
// scores are too close to call. A wrong confident match renames a file
// incorrectly, while an Ambiguous flag merely defers to review, so the
// thresholds lean toward flagging.
package matcher

import (
	"strings"
	"sync"

	"github.com/sevanw/episodic/internal/catalog"
	"github.com/sevanw/episodic/internal/parser"
)

// Outcome classifies a match result.
type Outcome int

const (
	Unmatched Outcome = iota
	Ambiguous
	Matched
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unmatched"
	}
}

// Result is the outcome of reconciling one ParsedName against the catalog.
type Result struct {
	Source  parser.ParsedName
	Outcome Outcome
	// Entry is valid only when Outcome == Matched.
	Entry catalog.Entry
	// Candidates is populated only when Outcome == Ambiguous, ordered by
	// descending score.
	Candidates []catalog.ScoredEntry
}

// Options carries the fuzzy-match policy knobs. The defaults are policy
// choices, not invariants; they are exposed through configuration.
type Options struct {
	// AcceptThreshold is the minimum top score for a confident fuzzy match.
	AcceptThreshold float64
	// AmbiguityMargin is how far the top score must clear the runner-up.
	AmbiguityMargin float64
	// Floor is the minimum top score worth reporting as ambiguous at all.
	Floor float64
	// MaxCandidates caps the candidate list on ambiguous results.
	MaxCandidates int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		AcceptThreshold: 0.6,
		AmbiguityMargin: 0.15,
		Floor:           0.3,
		MaxCandidates:   5,
	}
}

// Match reconciles a single parsed name. A nil index always yields Unmatched;
// the engine stays usable without catalog data and destinations then fall
// back to parsed fields.
func Match(parsed parser.ParsedName, ix *catalog.Index, opts Options) Result {
	res := Result{Source: parsed, Outcome: Unmatched}
	if ix == nil {
		return res
	}

	// Tier 1: exact lookup. Multi-episode files match on their first episode;
	// the destination template carries the full range.
	if parsed.HasSeason() && len(parsed.Episodes) > 0 {
		if entry, ok := ix.LookupExact(parsed.Season, parsed.Episodes[0]); ok {
			res.Outcome = Matched
			res.Entry = entry
			return res
		}
	}

	// Tier 2: fuzzy title recovery.
	query := strings.TrimSpace(parsed.ExtraTitle)
	if query == "" {
		query = parsed.ShowTitle
	}
	scored := ix.LookupByTitle(query)
	if len(scored) == 0 {
		return res
	}

	top := scored[0].Score
	second := 0.0
	if len(scored) > 1 {
		second = scored[1].Score
	}

	switch {
	case top > opts.AcceptThreshold && top-second > opts.AmbiguityMargin:
		res.Outcome = Matched
		res.Entry = scored[0].Entry
	case top > opts.Floor:
		res.Outcome = Ambiguous
		n := opts.MaxCandidates
		if n <= 0 || n > len(scored) {
			n = len(scored)
		}
		res.Candidates = scored[:n]
	}

	return res
}

// MatchAll evaluates every parsed name concurrently. Parsing results are
// independent and the index is read-only after build, so no synchronization
// beyond the join is needed. Results are re-associated to their sources by
// position, never by completion order.
func MatchAll(parsed []parser.ParsedName, ix *catalog.Index, opts Options) []Result {
	results := make([]Result, len(parsed))

	var wg sync.WaitGroup
	for i, p := range parsed {
		wg.Add(1)
		go func(i int, p parser.ParsedName) {
			defer wg.Done()
			results[i] = Match(p, ix, opts)
		}(i, p)
	}
	wg.Wait()

	return results
}
