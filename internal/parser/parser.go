// Package parser turns raw episode filenames into structured names.
//
// Parsing is deliberately tolerant: community naming conventions vary wildly
// in delimiters, marker forms and tag placement, so Parse never fails. When a
// filename cannot be interpreted at all it is still returned as a ParsedName
// with Low confidence and the whole stem kept as the extra title.
package parser

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Confidence grades how trustworthy a parse is.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// NoSeason marks a ParsedName whose filename carried no season information.
const NoSeason = -1

// ParsedName is the structured interpretation of one raw filename.
// It is immutable once produced.
type ParsedName struct {
	Path       string // input path as given
	Raw        string // base filename
	ShowTitle  string // best-effort show title guess, may be empty
	Season     int    // NoSeason when absent
	Episodes   []int  // sorted ascending; empty when absent
	ExtraTitle string // text after the episode marker, tags removed
	Tags       []string
	Confidence Confidence
}

// HasSeason reports whether a season number was recognized.
func (p ParsedName) HasSeason() bool { return p.Season != NoSeason }

// MultiEpisode reports whether the file spans more than one episode.
func (p ParsedName) MultiEpisode() bool { return len(p.Episodes) > 1 }

var (
	seMarkerRegex   = regexp.MustCompile(`(?i)(?:\b|_)S(\d{1,2})[\s._-]?E(\d{1,3})`)
	epContRegex     = regexp.MustCompile(`(?i)^(?:[\s._-]?E|-E?)(\d{1,3})`)
	xMarkerRegex    = regexp.MustCompile(`(?i)\b(\d{1,2})\s?x\s?(\d{2,3})\b`)
	seasonWordRegex = regexp.MustCompile(`(?i)\b(?:season|s)[\s._-]*(\d{1,2})\b`)
	bareEpRegex     = regexp.MustCompile(`^[\s._-]*(?:e|ep|episode)?[\s._-]*(\d{1,3})\b`)
	combinedRegex   = regexp.MustCompile(`\b(\d{3,4})\b`)
	delimRunRegex   = regexp.MustCompile(`[\s._]+`)
	trimEdgeRegex   = regexp.MustCompile(`^[\s._-]+|[\s._-]+$`)
)

var titleCaser = cases.Title(language.English)

// Parse interprets one filename. It never fails; the weakest result is a
// Low-confidence ParsedName carrying only the cleaned stem.
func Parse(path string) ParsedName {
	raw := filepath.Base(path)
	stem := strings.TrimSuffix(raw, filepath.Ext(raw))

	p := ParsedName{
		Path:   path,
		Raw:    raw,
		Season: NoSeason,
	}

	if season, episodes, start, end, ok := findExplicitMarker(stem); ok {
		p.Season = season
		p.Episodes = episodes
		p.ShowTitle, p.ExtraTitle, p.Tags = splitAroundMarker(stem, start, end)
		if p.ShowTitle != "" {
			p.Confidence = ConfidenceHigh
		}
		return p
	}

	if season, episode, start, end, ok := findCombinedCode(stem); ok {
		p.Season = season
		p.Episodes = []int{episode}
		p.ShowTitle, p.ExtraTitle, p.Tags = splitAroundMarker(stem, start, end)
		p.Confidence = ConfidenceMedium
		return p
	}

	// Nothing recognized: keep the whole stem, minus release tags, as the
	// extra title so fuzzy title matching still has something to work with.
	cleaned, tags := ExtractTags(stem)
	p.ExtraTitle = normalizeDelims(cleaned)
	p.Tags = tags
	return p
}

// findExplicitMarker scans for the three explicit season/episode forms:
// SxxEyy (with E01E02 lists and E01-03 ranges), the 1x02 form, and a bare
// episode number directly following a season marker.
func findExplicitMarker(stem string) (season int, episodes []int, start, end int, ok bool) {
	if loc := seMarkerRegex.FindStringSubmatchIndex(stem); loc != nil {
		season = mustAtoi(stem[loc[2]:loc[3]])
		first := mustAtoi(stem[loc[4]:loc[5]])
		episodes, end = episodeRun(stem, first, loc[1])
		return season, episodes, loc[0], end, true
	}

	if loc := xMarkerRegex.FindStringSubmatchIndex(stem); loc != nil {
		season = mustAtoi(stem[loc[2]:loc[3]])
		episode := mustAtoi(stem[loc[4]:loc[5]])
		return season, []int{episode}, loc[0], loc[1], true
	}

	if loc := seasonWordRegex.FindStringSubmatchIndex(stem); loc != nil {
		rest := stem[loc[1]:]
		if m := bareEpRegex.FindStringSubmatchIndex(rest); m != nil {
			season = mustAtoi(stem[loc[2]:loc[3]])
			episode := mustAtoi(rest[m[2]:m[3]])
			return season, []int{episode}, loc[0], loc[1] + m[1], true
		}
	}

	return 0, nil, 0, 0, false
}

// episodeRun consumes multi-episode continuations after the first Eyy token.
// "E01E02" and "E01.E02" extend the list; "E01-03" and "E01-E03" expand the
// whole range. Continuations that would swallow trailing digits (years,
// resolutions) are rejected by the 1-3 digit cap plus the boundary check.
func episodeRun(stem string, first, pos int) ([]int, int) {
	episodes := []int{first}
	for {
		m := epContRegex.FindStringSubmatchIndex(stem[pos:])
		if m == nil {
			break
		}
		// Reject when the continuation is immediately followed by another
		// digit: that means we bit into a longer number like "-2024".
		if pos+m[1] < len(stem) && isDigit(stem[pos+m[1]]) {
			break
		}
		n := mustAtoi(stem[pos+m[2] : pos+m[3]])
		if strings.HasPrefix(stem[pos:], "-") && n > episodes[len(episodes)-1] {
			// Range form: expand everything between the endpoints.
			for e := episodes[len(episodes)-1] + 1; e <= n; e++ {
				episodes = append(episodes, e)
			}
		} else {
			episodes = append(episodes, n)
		}
		pos += m[1]
	}

	sort.Ints(episodes)
	return dedupInts(episodes), pos
}

// findCombinedCode interprets bare 3-4 digit codes like "102" as S01E02.
// Only applies when no explicit marker exists and the surrounding context
// supports the reading: the code must not be a plausible year or a common
// resolution width, and some title text must precede it.
func findCombinedCode(stem string) (season, episode, start, end int, ok bool) {
	for _, loc := range combinedRegex.FindAllStringSubmatchIndex(stem, -1) {
		code := stem[loc[2]:loc[3]]
		n := mustAtoi(code)
		if n >= 1900 && n <= 2099 {
			continue // year
		}
		switch n {
		case 480, 576, 720, 1080, 1280, 1440, 2160:
			continue // resolution width/height
		}

		s, e := n/100, n%100
		if s < 1 || e < 1 {
			continue
		}

		title := trimEdgeRegex.ReplaceAllString(stem[:loc[0]], "")
		if title == "" {
			continue
		}
		return s, e, loc[0], loc[1], true
	}
	return 0, 0, 0, 0, false
}

// splitAroundMarker derives the title guess and extra title from the text on
// either side of the recognized marker.
func splitAroundMarker(stem string, start, end int) (show, extra string, tags []string) {
	before, beforeTags := ExtractTags(stem[:start])
	after, afterTags := ExtractTags(stem[end:])

	show = normalizeDelims(before)
	extra = normalizeDelims(after)

	tags = append(beforeTags, afterTags...)
	sort.Strings(tags)
	return show, extra, dedupStrings(tags)
}

// PolishTitle renders a parsed title fragment for display: delimiters
// normalized and English title casing applied. Acronyms already uppercase in
// the source survive because cases.Title leaves all-caps tokens alone.
func PolishTitle(s string) string {
	s = normalizeDelims(s)
	if s == "" {
		return ""
	}
	if s == strings.ToLower(s) {
		// Only re-case fully lowercase fragments; mixed case usually means
		// the release already carried intentional casing.
		s = titleCaser.String(s)
	}
	return s
}

func normalizeDelims(s string) string {
	s = trimEdgeRegex.ReplaceAllString(s, "")
	s = delimRunRegex.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return s
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func dedupInts(in []int) []int {
	out := in[:0]
	for i, v := range in {
		if i == 0 || v != in[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func dedupStrings(in []string) []string {
	out := in[:0]
	for i, v := range in {
		if i == 0 || v != in[i-1] {
			out = append(out, v)
		}
	}
	return out
}
