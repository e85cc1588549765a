package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Template is a parsed naming template. Recognized placeholders:
//
//	{show}             series title
//	{season:NN}        season number, zero-padded to the number of Ns
//	{episode:NN}       episode number (first episode for multi-episode files)
//	{episode_end:NN}   last episode number, multi-episode files only
//	{title}            episode title
//	{ext}              original file extension, dot included
//
// An {episode_end} segment and the literal immediately before it are dropped
// when the file covers a single episode, so templates like
// "E{episode:NN}-E{episode_end:NN}" degrade cleanly to "E05".
type Template struct {
	raw      string
	segments []segment
	hasEnd   bool
}

type fieldKind int

const (
	fieldLiteral fieldKind = iota
	fieldShow
	fieldSeason
	fieldEpisode
	fieldEpisodeEnd
	fieldTitle
	fieldExt
)

type segment struct {
	kind    fieldKind
	literal string
	pad     int
}

var fieldNames = map[string]fieldKind{
	"show":        fieldShow,
	"season":      fieldSeason,
	"episode":     fieldEpisode,
	"episode_end": fieldEpisodeEnd,
	"title":       fieldTitle,
	"ext":         fieldExt,
}

// ParseTemplate validates and compiles a naming template. Unrecognized
// placeholders are a configuration error and are reported up front, before
// any filename is parsed.
func ParseTemplate(raw string) (*Template, error) {
	t := &Template{raw: raw}

	rest := raw
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			t.segments = append(t.segments, segment{kind: fieldLiteral, literal: rest})
			break
		}
		if open > 0 {
			t.segments = append(t.segments, segment{kind: fieldLiteral, literal: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("naming template: unterminated placeholder in %q", raw)
		}

		body := rest[open+1 : open+end]
		rest = rest[open+end+1:]

		name, padSpec := body, ""
		if i := strings.IndexByte(body, ':'); i >= 0 {
			name, padSpec = body[:i], body[i+1:]
		}

		kind, ok := fieldNames[name]
		if !ok {
			return nil, fmt.Errorf("naming template: unrecognized placeholder {%s}", body)
		}

		pad := 0
		if padSpec != "" {
			if strings.Trim(padSpec, "N") != "" {
				return nil, fmt.Errorf("naming template: bad pad spec {%s}", body)
			}
			pad = len(padSpec)
		}

		if kind == fieldEpisodeEnd {
			t.hasEnd = true
		}
		t.segments = append(t.segments, segment{kind: kind, pad: pad})
	}

	if len(t.segments) == 0 {
		return nil, fmt.Errorf("naming template is empty")
	}
	return t, nil
}

// String returns the original template text.
func (t *Template) String() string { return t.raw }

// Values feeds one render of the template. EpisodeEnd of zero means the file
// covers a single episode.
type Values struct {
	Show       string
	Season     int
	Episode    int
	EpisodeEnd int
	Title      string
	Ext        string
}

// Render produces the destination base name for one file.
func (t *Template) Render(v Values) string {
	var sb strings.Builder
	var pendingLiteral string

	flush := func() {
		sb.WriteString(pendingLiteral)
		pendingLiteral = ""
	}

	for _, seg := range t.segments {
		switch seg.kind {
		case fieldLiteral:
			// Held back so it can be dropped with a skipped episode_end.
			flush()
			pendingLiteral = seg.literal
		case fieldShow:
			flush()
			sb.WriteString(v.Show)
		case fieldSeason:
			flush()
			sb.WriteString(padNumber(v.Season, seg.pad))
		case fieldEpisode:
			flush()
			sb.WriteString(padNumber(v.Episode, seg.pad))
			// Templates without an {episode_end} placeholder still must
			// carry the full range for multi-episode files.
			if !t.hasEnd && v.EpisodeEnd > v.Episode {
				sb.WriteString("-E")
				sb.WriteString(padNumber(v.EpisodeEnd, seg.pad))
			}
		case fieldEpisodeEnd:
			if v.EpisodeEnd <= v.Episode {
				pendingLiteral = ""
				continue
			}
			flush()
			sb.WriteString(padNumber(v.EpisodeEnd, seg.pad))
		case fieldTitle:
			flush()
			sb.WriteString(v.Title)
		case fieldExt:
			flush()
			sb.WriteString(v.Ext)
		}
	}
	flush()

	return strings.TrimSpace(collapseRenderedSpaces(sb.String()))
}

func padNumber(n, pad int) string {
	if pad <= 0 {
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%0*d", pad, n)
}

// collapseRenderedSpaces tidies the artifacts of empty fields: doubled spaces
// and a dangling separator before the extension.
func collapseRenderedSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.ReplaceAll(s, " - .", ".")
	return s
}
