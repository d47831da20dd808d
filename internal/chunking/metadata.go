package chunking

import (
	"regexp"
	"strings"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// How far into a chunk the heading scan looks.
const headingScanLines = 10

// Longest line still considered a heading candidate.
const maxHeadingLen = 80

var (
	// sectionRefRe matches construction section references like
	// "Section 03 30 00", "Division 9" or "Part 2.1".
	sectionRefRe = regexp.MustCompile(`(?i)\b(?:section|division|part)\s+\d+(?:[ .-]\d+)*`)

	// specNumberRe matches six-digit MasterFormat numbers, grouped
	// ("09 91 23", "09.91.23") or run together ("099123").
	specNumberRe = regexp.MustCompile(`\b\d{2}[ .]?\d{2}[ .]?\d{2}\b`)

	// allCapsRe matches multi-word all-caps terms like
	// "CAST-IN-PLACE CONCRETE".
	allCapsRe = regexp.MustCompile(`\b[A-Z][A-Z&/-]+(?:\s+[A-Z][A-Z&/-]+)+\b`)

	// markdownHeadingRe matches markdown-style heading lines.
	markdownHeadingRe = regexp.MustCompile(`^#{1,6}\s+`)

	// numberedHeadingRe matches outline-numbered lines like "1.2 Scope".
	numberedHeadingRe = regexp.MustCompile(`^\d+(?:\.\d+)*[.)]?\s+\S`)
)

// extractSectionRef returns the first section reference in the text,
// empty when none is found.
func extractSectionRef(text string) string {
	return strings.TrimSpace(sectionRefRe.FindString(text))
}

// extractHeadings returns up to MaxChunkHeadings heading-like lines from
// the first headingScanLines lines of the chunk.
func extractHeadings(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > headingScanLines {
		lines = lines[:headingScanLines]
	}

	var headings []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !isHeadingLine(line) {
			continue
		}
		headings = append(headings, strings.TrimSpace(markdownHeadingRe.ReplaceAllString(line, "")))
		if len(headings) == domain.MaxChunkHeadings {
			break
		}
	}
	return headings
}

// isHeadingLine reports whether a line looks like a heading: short, and
// either fully upper-case, markdown-style, or outline-numbered.
func isHeadingLine(line string) bool {
	if line == "" || len(line) > maxHeadingLen {
		return false
	}
	if markdownHeadingRe.MatchString(line) {
		return true
	}
	if numberedHeadingRe.MatchString(line) {
		return true
	}
	return isAllUpper(line)
}

// isAllUpper reports whether the line has letters and none lower-case.
func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	return hasLetter
}

// extractKeywords returns up to MaxChunkKeywords deduplicated terms:
// spec-number groupings first, then multi-word all-caps terms, in order
// of first appearance.
func extractKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]bool)

	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		if len(keywords) < domain.MaxChunkKeywords {
			keywords = append(keywords, term)
		}
	}

	for _, m := range specNumberRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range allCapsRe.FindAllString(text, -1) {
		add(m)
	}

	return keywords
}
