package parser

import (
	"regexp"
	"sort"
	"strings"
)

// Release-tag categories. Order matters: longer alternations first so
// "WEB-DL" is not consumed as "WEB".
var tagCategoryRegexes []*regexp.Regexp

func init() {
	patterns := []string{
		// Resolution markers
		`\b\d{3,4}[pi]\b`,
		`\b(4K|UHD)\b`,
		// Source types
		`\b(BluRay|Blu-ray|BDRip|BRRip|REMUX|WEB-?DL|WEBRip|WEB|HDTV|PDTV|DVDRip|DVDSCR|DVD)\b`,
		// Video codecs
		`\b(x26[456]|H\.?26[456]|HEVC|AVC|AV1|XviD|DivX|VP9)\b`,
		// Audio codecs
		`\b(DTS-HD(?:\s?MA)?|DTS|TrueHD|Atmos|DDP|DD\+?|EAC3|AC3|AAC|FLAC|Opus|MP3)\b`,
		// Streaming platforms
		`\b(AMZN|NF|DSNP|HMAX|HULU|ATVP|PCOK|PMTP)\b`,
		// HDR / bit depth / release flags
		`\b(HDR10\+?|HDR|DoVi|DV|SDR|8bit|10bit)\b`,
		`\b(PROPER|REPACK|iNTERNAL|INTERNAL|LiMiTED|LIMITED|UNRATED|EXTENDED|REMASTERED)\b`,
		`\b(MULTI|DUAL|SUBBED|DUBBED|MSubs)\b`,
	}
	tagCategoryRegexes = make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		tagCategoryRegexes = append(tagCategoryRegexes, regexp.MustCompile(`(?i)`+p))
	}
}

var (
	bracketTagRegex    = regexp.MustCompile(`\[([^\[\]]*)\]`)
	trailingGroupRegex = regexp.MustCompile(`-([A-Za-z0-9]+)[\s.]*$`)
	audioChannelsRegex = regexp.MustCompile(`\b\d[\s.]\d\b`)
)

// knownGroups covers release groups that are title-cased English words and
// would otherwise slip past the shape heuristics.
var knownGroups = map[string]bool{
	"rarbg": true, "yts": true, "yify": true, "flux": true, "ntb": true,
	"sparks": true, "fgt": true, "ethel": true, "edith": true, "cmrg": true,
	"kitsune": true, "psychd": true, "mircrew": true,
}

// ExtractTags pulls recognized release tags (resolution, source, codec,
// bracketed or hyphen-attached group names) out of a filename fragment and
// returns the cleaned remainder plus the sorted tag set.
func ExtractTags(s string) (cleaned string, tags []string) {
	for _, m := range bracketTagRegex.FindAllStringSubmatch(s, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			tags = append(tags, t)
		}
	}
	s = bracketTagRegex.ReplaceAllString(s, " ")

	for _, re := range tagCategoryRegexes {
		for _, m := range re.FindAllString(s, -1) {
			tags = append(tags, m)
		}
		s = re.ReplaceAllString(s, " ")
	}

	// A trailing "-Token" is a release group only when the token has a
	// release-like shape; hyphenated title words are left alone.
	if m := trailingGroupRegex.FindStringSubmatch(s); m != nil && looksLikeReleaseGroup(m[1]) {
		tags = append(tags, m[1])
		s = trailingGroupRegex.ReplaceAllString(s, " ")
	}

	// Orphaned channel layouts ("5 1" after the codec was removed).
	s = audioChannelsRegex.ReplaceAllString(s, " ")

	sort.Strings(tags)
	return s, dedupStrings(tags)
}

func looksLikeReleaseGroup(tok string) bool {
	if knownGroups[strings.ToLower(tok)] {
		return true
	}

	hasDigit, hasLower, hasUpper := false, false, false
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		}
	}
	if hasDigit && (hasLower || hasUpper) {
		return true
	}
	// Short all-caps tokens: GROUP, NTb-style tags slip through above.
	return hasUpper && !hasLower && len(tok) >= 2 && len(tok) <= 8
}
