// Package catalog holds the canonical episode list for a series and the
// read-only lookup index built over it. The index is built once per catalog
// and is safe for concurrent readers.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Entry is one canonical episode record as supplied by a metadata provider.
// The engine never mutates entries.
type Entry struct {
	Season  int
	Episode int
	Title   string
	AirDate time.Time // zero when unknown
}

func (e Entry) String() string {
	return fmt.Sprintf("S%02dE%02d %s", e.Season, e.Episode, e.Title)
}

// DuplicateEpisodeError reports two catalog entries claiming the same
// (season, episode). It signals corrupt provider data and is surfaced rather
// than silently deduplicated.
type DuplicateEpisodeError struct {
	Season  int
	Episode int
}

func (e *DuplicateEpisodeError) Error() string {
	return fmt.Sprintf("duplicate catalog entry for S%02dE%02d", e.Season, e.Episode)
}

type episodeKey struct {
	season  int
	episode int
}

// Index is the derived lookup structure: exact (season, episode) access plus
// a normalized-title token index for fuzzy recovery when episode numbers are
// absent or wrong.
type Index struct {
	entries []Entry
	exact   map[episodeKey]int
	tokens  map[string][]int // normalized token -> entry positions
	nTokens []int            // token count per entry title
}

// BuildIndex builds the index over the supplied entries.
func BuildIndex(entries []Entry) (*Index, error) {
	ix := &Index{
		entries: make([]Entry, len(entries)),
		exact:   make(map[episodeKey]int, len(entries)),
		tokens:  make(map[string][]int),
		nTokens: make([]int, len(entries)),
	}
	copy(ix.entries, entries)

	for i, e := range ix.entries {
		key := episodeKey{e.Season, e.Episode}
		if _, dup := ix.exact[key]; dup {
			return nil, &DuplicateEpisodeError{Season: e.Season, Episode: e.Episode}
		}
		ix.exact[key] = i

		toks := TitleTokens(e.Title)
		ix.nTokens[i] = len(toks)
		for _, t := range toks {
			ix.tokens[t] = append(ix.tokens[t], i)
		}
	}

	return ix, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// LookupExact returns the entry at (season, episode), if any.
func (ix *Index) LookupExact(season, episode int) (Entry, bool) {
	i, ok := ix.exact[episodeKey{season, episode}]
	if !ok {
		return Entry{}, false
	}
	return ix.entries[i], true
}

// ScoredEntry pairs a catalog entry with its title-match score.
type ScoredEntry struct {
	Entry Entry
	Score float64
}

// LookupByTitle scores every entry sharing at least one normalized token with
// the query. Score is shared tokens divided by the larger of the two token
// counts; ties break on earliest air date, then lowest (season, episode).
func (ix *Index) LookupByTitle(query string) []ScoredEntry {
	qToks := TitleTokens(query)
	if len(qToks) == 0 {
		return nil
	}

	shared := make(map[int]int)
	seen := make(map[string]bool, len(qToks))
	for _, t := range qToks {
		if seen[t] {
			continue
		}
		seen[t] = true
		for _, i := range ix.tokens[t] {
			shared[i]++
		}
	}

	scored := make([]ScoredEntry, 0, len(shared))
	for i, n := range shared {
		denom := len(seen)
		if ix.nTokens[i] > denom {
			denom = ix.nTokens[i]
		}
		scored = append(scored, ScoredEntry{
			Entry: ix.entries[i],
			Score: float64(n) / float64(denom),
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		da, db := scored[a].Entry.AirDate, scored[b].Entry.AirDate
		if !da.Equal(db) {
			// Unknown air dates sort last.
			if da.IsZero() || db.IsZero() {
				return !da.IsZero()
			}
			return da.Before(db)
		}
		if scored[a].Entry.Season != scored[b].Entry.Season {
			return scored[a].Entry.Season < scored[b].Entry.Season
		}
		return scored[a].Entry.Episode < scored[b].Entry.Episode
	})

	return scored
}

var (
	titlePunctRegex  = regexp.MustCompile(`[^\w\s&]`)
	titleSpacesRegex = regexp.MustCompile(`\s+`)
)

// romanNumerals folds the short roman numerals common in episode titles so
// "Part II" and "Part 2" compare equal.
var romanNumerals = map[string]string{
	"ii": "2", "iii": "3", "iv": "4", "vi": "6",
	"vii": "7", "viii": "8", "ix": "9",
}

// NormalizeTitle lowers case, folds punctuation, roman numerals and "and"
// variants so fuzzy comparison is deterministic across catalog updates.
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	// Apostrophes join a word ("what's" -> "whats"); other punctuation splits.
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = titlePunctRegex.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	for i, w := range words {
		if n, ok := romanNumerals[w]; ok {
			words[i] = n
		}
		if w == "and" {
			words[i] = "&"
		}
	}
	s = strings.Join(words, " ")

	return strings.TrimSpace(titleSpacesRegex.ReplaceAllString(s, " "))
}

// TitleTokens returns the normalized, deduplicated token set of a title.
func TitleTokens(s string) []string {
	fields := strings.Fields(NormalizeTitle(s))
	seen := make(map[string]bool, len(fields))
	toks := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			toks = append(toks, f)
		}
	}
	return toks
}
