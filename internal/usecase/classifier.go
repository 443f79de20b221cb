package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/macronotes/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	idLineRegex     = regexp.MustCompile(`^id:\s*(\S+)`)
	timestampRegex  = regexp.MustCompile(`@(\d{2}:\d{2})`)
	multiplierRegex = regexp.MustCompile(`^(.*?)\s*×\s*(\d+)$`)
	leadingNumRegex = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
)

const (
	mealPrefix  = "meal:"
	groupPrefix = "group:"
)

// ClassifyLine splits one trimmed, non-empty line of macros notation
// into its semantic parts. It never fails: every line classifies as one
// of the five kinds, with unparseable fields left empty.
func ClassifyLine(line string) domain.ParsedLine {
	trimmed := strings.TrimSpace(line)
	if m := idLineRegex.FindStringSubmatch(trimmed); m != nil {
		return domain.ParsedLine{Kind: domain.LineID, RawText: trimmed, Name: m[1], Count: 1}
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, mealPrefix):
		return classifySection(domain.LineMeal, trimmed, trimmed[len(mealPrefix):])
	case strings.HasPrefix(lower, groupPrefix):
		return classifySection(domain.LineGroup, trimmed, trimmed[len(groupPrefix):])
	case strings.HasPrefix(trimmed, "-"):
		parsed := classifyItem(trimmed, strings.TrimPrefix(trimmed, "-"))
		parsed.Kind = domain.LineBullet
		return parsed
	default:
		return classifyItem(trimmed, trimmed)
	}
}

// classifySection handles meal:/group: declarations. The declared name
// may carry a "× N" multiplier suffix produced by the line merger.
func classifySection(kind domain.LineKind, raw, rest string) domain.ParsedLine {
	parsed := domain.ParsedLine{Kind: kind, RawText: raw, Count: 1}

	working, comment := splitComment(rest)
	parsed.Comment = comment

	working, parsed.Timestamp = extractTimestamp(working)

	name := strings.TrimSpace(working)
	if m := multiplierRegex.FindStringSubmatch(name); m != nil {
		if count, err := strconv.Atoi(m[2]); err == nil && count > 0 {
			name = strings.TrimSpace(m[1])
			parsed.Count = count
		}
	}
	parsed.Name = name
	return parsed
}

// classifyItem handles bullet and bare food lines: an optional inline
// comment, an optional @HH:MM timestamp, and an optional ":<quantity>"
// override after the food name.
func classifyItem(raw, rest string) domain.ParsedLine {
	parsed := domain.ParsedLine{Kind: domain.LineItem, RawText: raw, Count: 1}

	working, comment := splitComment(rest)
	parsed.Comment = comment

	working, parsed.Timestamp = extractTimestamp(working)

	if idx := strings.Index(working, ":"); idx >= 0 {
		parsed.QuantityText = strings.TrimSpace(working[idx+1:])
		working = working[:idx]
	}
	parsed.Name = strings.TrimSpace(working)
	return parsed
}

// splitComment separates the working text from an inline "//" comment.
func splitComment(text string) (working, comment string) {
	if idx := strings.Index(text, "//"); idx >= 0 {
		return text[:idx], strings.TrimSpace(text[idx+2:])
	}
	return text, ""
}

// extractTimestamp removes the first @HH:MM token from the text and
// returns the remainder plus the captured time.
func extractTimestamp(text string) (working, timestamp string) {
	loc := timestampRegex.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, ""
	}
	timestamp = text[loc[2]:loc[3]]
	working = text[:loc[0]] + text[loc[1]:]
	return working, timestamp
}

// ParseQuantityGrams extracts the leading numeric value of a quantity
// string as grams. Trailing unit text is ignored; a missing or
// non-numeric quantity yields ok=false (no override).
func ParseQuantityGrams(text string) (grams float64, ok bool) {
	m := leadingNumRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	grams, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return grams, true
}
