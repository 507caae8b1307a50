package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bracketPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)
	scorePattern   = regexp.MustCompile(`(?i)\[\s*score\s*:?\s*([0-9]+(?:\.[0-9]+)?)\s*\]`)
	leadingIndex   = regexp.MustCompile(`^\s*\d+\s*[.)]\s*`)
)

// NormalizeFieldName lowercases a raw source column name and replaces spaces
// with underscores so schema drift in header casing never produces a new field.
func NormalizeFieldName(name string) string {
	trimmed := strings.TrimSpace(name)
	lowered := strings.ToLower(trimmed)
	return strings.ReplaceAll(lowered, " ", "_")
}

// ExtractBracketed returns the segments enclosed in square brackets, in order,
// with any leading "1." or "2)" numbering stripped. Segments that are empty
// after trimming are dropped.
func ExtractBracketed(text string) []string {
	matches := bracketPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	segments := make([]string, 0, len(matches))
	for _, match := range matches {
		segment := strings.TrimSpace(leadingIndex.ReplaceAllString(match[1], ""))
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// ParseBracketedScore extracts a numeric score formatted as "[Score: 87]".
// The label is matched case-insensitively and the colon is optional.
func ParseBracketedScore(text string) (float64, bool) {
	match := scorePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return score, true
}
