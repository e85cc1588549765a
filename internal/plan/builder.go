// Package plan turns match results into a reviewable batch of renames.
//
// Building is a pure aggregation step: no filesystem access, single-threaded
// (collision detection needs the whole result set), and deterministic so the
// same inputs always produce the same plan.
package plan

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sevanw/episodic/internal/matcher"
	"github.com/sevanw/episodic/internal/parser"
)

// Status tracks whether an item may be executed.
type Status string

const (
	StatusPlanned  Status = "planned"
	StatusSkipped  Status = "skipped"
	StatusConflict Status = "conflict"
)

const (
	// ReasonAlreadyNamed marks items whose destination equals their source.
	ReasonAlreadyNamed = "already correctly named"
	// ReasonDuplicateDest marks every party to a destination collision.
	ReasonDuplicateDest = "duplicate destination"
	// ReasonManual marks items the reviewer unchecked.
	ReasonManual = "skipped by reviewer"
)

// Item is one proposed rename.
type Item struct {
	SourcePath string         `json:"source_path"`
	DestPath   string         `json:"dest_path"`
	Basis      matcher.Result `json:"basis"`
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
}

// LowConfidence reports whether the destination was rendered from parsed
// fields only, without catalog confirmation.
func (it Item) LowConfidence() bool {
	return it.Basis.Outcome != matcher.Matched
}

// Plan is the full ordered batch. A plan is executable only while no two
// non-skipped items share a destination; Revalidate restores that invariant
// after reviewer edits.
type Plan struct {
	// CreatedAt is stamped when the plan is saved, not built, so building
	// is a pure function of its inputs.
	CreatedAt time.Time `json:"created_at"`
	Show      string    `json:"show,omitempty"`
	Template  string    `json:"template"`
	Items     []Item    `json:"items"`
}

// Build aggregates match results into a plan. The show name is used for the
// {show} placeholder; when empty, each item falls back to its own parsed
// title guess. Build is deterministic: equal inputs produce equal plans.
func Build(results []matcher.Result, tmpl *Template, show string) *Plan {
	p := &Plan{
		Show:      show,
		Template:  tmpl.String(),
		Items:     make([]Item, 0, len(results)),
	}

	for _, res := range results {
		item := Item{
			SourcePath: res.Source.Path,
			Basis:      res,
			Status:     StatusPlanned,
		}
		item.DestPath = destinationFor(res, tmpl, show)

		if item.DestPath == item.SourcePath {
			item.Status = StatusSkipped
			item.Reason = ReasonAlreadyNamed
		}

		p.Items = append(p.Items, item)
	}

	p.Revalidate()
	return p
}

// Revalidate re-runs the collision pass. It must be called whenever a caller
// hands a plan back after manual edits; execution is refused otherwise.
// Conflicts are recomputed from scratch so resolving one edit clears the
// other party too; reviewer skips are left alone.
func (p *Plan) Revalidate() {
	counts := make(map[string]int, len(p.Items))
	for i := range p.Items {
		it := &p.Items[i]
		if it.Status == StatusConflict {
			it.Status = StatusPlanned
			it.Reason = ""
		}
		if it.Status == StatusPlanned && it.DestPath == it.SourcePath {
			it.Status = StatusSkipped
			it.Reason = ReasonAlreadyNamed
		}
		if it.Status != StatusSkipped {
			counts[destKey(it.DestPath)]++
		}
	}

	for i := range p.Items {
		it := &p.Items[i]
		if it.Status == StatusSkipped {
			continue
		}
		if counts[destKey(it.DestPath)] > 1 {
			// Never silently pick a winner: an overwrite loses data.
			it.Status = StatusConflict
			it.Reason = ReasonDuplicateDest
		}
	}
}

// Pending returns the number of items that would be executed.
func (p *Plan) Pending() int {
	n := 0
	for _, it := range p.Items {
		if it.Status == StatusPlanned {
			n++
		}
	}
	return n
}

// destKey folds case so collisions are caught on case-insensitive
// filesystems as well.
func destKey(path string) string {
	return strings.ToLower(path)
}

// destinationFor renders the destination path for one result. Matched
// results draw season, episode and title from the catalog entry; everything
// else renders best-effort from parsed fields alone.
func destinationFor(res matcher.Result, tmpl *Template, show string) string {
	src := res.Source
	dir := filepath.Dir(src.Path)
	ext := filepath.Ext(src.Raw)

	if show == "" {
		show = parser.PolishTitle(src.ShowTitle)
	}

	v := Values{Show: show, Ext: ext}
	switch {
	case res.Outcome == matcher.Matched:
		v.Season = res.Entry.Season
		v.Episode = res.Entry.Episode
		v.Title = res.Entry.Title
		if src.MultiEpisode() {
			v.EpisodeEnd = src.Episodes[len(src.Episodes)-1]
		}
	case src.HasSeason() && len(src.Episodes) > 0:
		v.Season = src.Season
		v.Episode = src.Episodes[0]
		v.Title = parser.PolishTitle(src.ExtraTitle)
		if src.MultiEpisode() {
			v.EpisodeEnd = src.Episodes[len(src.Episodes)-1]
		}
	default:
		// No usable structure at all: keep the file where it is.
		return src.Path
	}

	base := SanitizeFilename(tmpl.Render(v))
	if base == "" {
		return src.Path
	}
	return filepath.Join(dir, base)
}

var (
	illegalCharsRegex = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlCharsRegex = regexp.MustCompile(`[\x00-\x1f]`)
)

// SanitizeFilename strips filesystem-illegal characters from a rendered base
// name and trims the trailing dots and spaces Windows rejects.
func SanitizeFilename(name string) string {
	name = illegalCharsRegex.ReplaceAllString(name, "")
	name = controlCharsRegex.ReplaceAllString(name, "")
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	return strings.TrimRight(strings.TrimSpace(name), ". ")
}
