// Package normalize turns free-form provider output into bounded, cleaned
// results. It is best effort: malformed lines are skipped, nothing here
// returns an error.
package normalize

import (
	"regexp"
	"strings"
)

// NoLimit disables truncation in ListOptions.MaxItems.
const NoLimit = -1

var (
	numberingRe = regexp.MustCompile(`^\d+[.):\-]\s+`)

	// "-", "*" and "–" only count as bullets when followed by whitespace, so
	// "-20%" and "**bold**" survive.
	bulletRe = regexp.MustCompile(`^(?:[•·]\s*|[-*–](?:\s+|$))`)
)

// ListOptions controls line cleaning. A MaxItems of 0 yields an empty list;
// use NoLimit to keep every line.
type ListOptions struct {
	MaxItems        int
	RemoveNumbering bool
	RemoveBullets   bool
}

// KeyValueResult is the mapping form of a normalized response. Duplicates
// lists keys that appeared more than once; the last value is the one kept.
type KeyValueResult struct {
	Values     map[string]string
	Duplicates []string
}

// List splits raw into cleaned, non-empty lines, truncated to opts.MaxItems.
func List(raw string, opts ListOptions) []string {
	lines := cleanLines(raw, opts.RemoveNumbering, opts.RemoveBullets)
	if opts.MaxItems >= 0 && len(lines) > opts.MaxItems {
		lines = lines[:opts.MaxItems]
	}
	return lines
}

// Section returns the first blank-line separated block of raw containing
// marker, with the marker removed.
func Section(raw, marker string) (string, bool) {
	for _, block := range splitSections(raw) {
		if strings.Contains(block, marker) {
			return strings.TrimSpace(strings.Replace(block, marker, "", 1)), true
		}
	}
	return "", false
}

// KeyValues extracts "key: value" lines from the section of raw holding
// marker, or from the whole text when marker is empty. A missing section
// yields an empty result.
func KeyValues(raw, marker string) KeyValueResult {
	res := KeyValueResult{Values: map[string]string{}}
	body := raw
	if marker != "" {
		var ok bool
		if body, ok = Section(raw, marker); !ok {
			return res
		}
	}
	for _, line := range cleanLines(body, false, false) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if _, seen := res.Values[key]; seen {
			res.Duplicates = append(res.Duplicates, key)
		}
		res.Values[key] = value
	}
	return res
}

func cleanLines(raw string, removeNumbering, removeBullets bool) []string {
	out := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if removeNumbering {
			line = strings.TrimSpace(numberingRe.ReplaceAllString(line, ""))
		}
		if removeBullets {
			line = strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitSections(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var sections []string
	for _, s := range strings.Split(raw, "\n\n") {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}
	return sections
}
