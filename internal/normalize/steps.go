package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// markerRe finds candidate step markers such as "1." or "12.".
// A candidate only counts when it stands alone: start of text or whitespace
// before it, whitespace or end of text after it. That keeps decimals like
// "12.5%" out, but a sentence such as "see step 3. then" still splits.
var markerRe = regexp.MustCompile(`\d+\.`)

type span struct {
	start, end int
}

func findMarkers(s string) []span {
	var markers []span
	for _, loc := range markerRe.FindAllStringIndex(s, -1) {
		if loc[0] > 0 && !isSpace(s[loc[0]-1]) {
			continue
		}
		if loc[1] < len(s) && !isSpace(s[loc[1]]) {
			continue
		}
		markers = append(markers, span{start: loc[0], end: loc[1]})
	}
	return markers
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// FormatStepList numbers steps from 1 and joins them with newlines.
func FormatStepList(steps []string) string {
	lines := make([]string, len(steps))
	for i, step := range steps {
		lines[i] = fmt.Sprintf("%d. %s", i+1, step)
	}
	return strings.Join(lines, "\n")
}

// NormalizeSteps rewrites free-text steps as one numbered step per line.
//
// With two or more markers the text is cut at each marker and renumbered, so
// N markers give N lines; text before the first marker joins the first step.
// If cutting leaves at most one step with any text, newlines are inserted in
// front of each marker instead and the original numbering is kept.
// With fewer than two markers, multi-line text is numbered line by line and
// single-line text is returned trimmed.
//
// This is a heuristic. Numbers that end a sentence ("wait 5. Then retry")
// are read as markers, and markers glued to their text ("1.Open app") are not.
func NormalizeSteps(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	markers := findMarkers(s)
	if len(markers) < 2 {
		lines := nonEmptyLines(s)
		if len(lines) <= 1 {
			return s
		}
		for i, line := range lines {
			lines[i] = stripMarker(line)
		}
		return FormatStepList(lines)
	}

	segments := cutAtMarkers(s, markers)
	filled := 0
	for _, seg := range segments {
		if seg != "" {
			filled++
		}
	}
	if filled <= 1 {
		return breakBeforeMarkers(s, markers)
	}

	lines := make([]string, len(segments))
	for i, seg := range segments {
		lines[i] = strings.TrimSpace(fmt.Sprintf("%d. %s", i+1, seg))
	}
	return strings.Join(lines, "\n")
}

// SplitSteps returns the text of each step with numbering removed, dropping
// empty steps. Text without markers is split on newlines. Never returns an
// empty slice for non-blank input.
func SplitSteps(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var steps []string
	markers := findMarkers(s)
	if len(markers) < 2 {
		for _, line := range nonEmptyLines(s) {
			if text := stripMarker(line); text != "" {
				steps = append(steps, text)
			}
		}
	} else {
		for _, seg := range cutAtMarkers(s, markers) {
			if seg != "" {
				steps = append(steps, seg)
			}
		}
	}

	if len(steps) == 0 {
		return []string{s}
	}
	return steps
}

// cutAtMarkers returns the whitespace-collapsed text following each marker.
// Text before the first marker is prepended to the first segment.
func cutAtMarkers(s string, markers []span) []string {
	segments := make([]string, len(markers))
	for i, m := range markers {
		end := len(s)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		segments[i] = collapse(s[m.end:end])
	}
	if preamble := collapse(s[:markers[0].start]); preamble != "" {
		segments[0] = strings.TrimSpace(preamble + " " + segments[0])
	}
	return segments
}

func breakBeforeMarkers(s string, markers []span) string {
	lines := make([]string, 0, len(markers))
	prev := 0
	for _, m := range markers[1:] {
		lines = append(lines, collapse(s[prev:m.start]))
		prev = m.start
	}
	lines = append(lines, collapse(s[prev:]))
	return strings.Join(lines, "\n")
}

func stripMarker(line string) string {
	if m := findMarkers(line); len(m) > 0 && m[0].start == 0 {
		return strings.TrimSpace(line[m[0].end:])
	}
	return line
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
