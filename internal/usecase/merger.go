package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// bareGramsRegex matches the exact mergeable form of a bare food line:
// "<Name>: <number>g" with nothing else on the line.
var bareGramsRegex = regexp.MustCompile(`^([^:]+):\s*(\d+(?:\.\d+)?)\s*g\s*$`)

// mergeKey is a case-insensitive accumulation bucket for one food name
// or one meal declaration.
type mergeKey struct {
	displayName string
	firstIndex  int
	grams       float64
	count       int
}

// MergeLines collapses duplicate bare food lines (same name, explicit
// gram quantity) into one summed line, and duplicate meal declarations
// into one with a "× N" multiplier suffix. All other lines pass through
// unchanged and in place; original order is preserved by emitting each
// merged line at its first occurrence. The pass is idempotent:
// MergeLines(MergeLines(lines)) equals MergeLines(lines).
func MergeLines(lines []string) []string {
	foods := map[string]*mergeKey{}
	meals := map[string]*mergeKey{}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, mealPrefix):
			name, count := mealBaseName(trimmed)
			key := strings.ToLower(name)
			if entry, ok := meals[key]; ok {
				entry.count += count
			} else {
				meals[key] = &mergeKey{displayName: name, firstIndex: i, count: count}
			}
		case strings.HasPrefix(lower, groupPrefix), strings.HasPrefix(lower, "id:"):
			// group: duplicates are intentionally not merged; see package docs
		default:
			m := bareGramsRegex.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			grams, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			key := strings.ToLower(name)
			if entry, ok := foods[key]; ok {
				entry.grams += grams
			} else {
				foods[key] = &mergeKey{displayName: name, firstIndex: i, grams: grams}
			}
		}
	}

	merged := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		switch {
		case strings.HasPrefix(trimmed, "-"):
			merged = append(merged, line)
		case strings.HasPrefix(lower, mealPrefix):
			name, _ := mealBaseName(trimmed)
			entry := meals[strings.ToLower(name)]
			if entry.firstIndex != i {
				continue // later duplicate, already merged into the first
			}
			if entry.count > 1 {
				merged = append(merged, fmt.Sprintf("%s%s × %d", mealPrefix, entry.displayName, entry.count))
			} else {
				merged = append(merged, line)
			}
		case strings.HasPrefix(lower, groupPrefix), strings.HasPrefix(lower, "id:"):
			merged = append(merged, line)
		default:
			m := bareGramsRegex.FindStringSubmatch(trimmed)
			if m == nil {
				merged = append(merged, line)
				continue
			}
			name := strings.TrimSpace(m[1])
			entry := foods[strings.ToLower(name)]
			if entry.firstIndex != i {
				continue
			}
			merged = append(merged, fmt.Sprintf("%s:%sg", entry.displayName, formatGrams(entry.grams)))
		}
	}
	return merged
}

// mealBaseName extracts the base name and multiplier count from a raw
// "meal:" line, ignoring any inline comment.
func mealBaseName(trimmed string) (string, int) {
	rest := trimmed[len(mealPrefix):]
	rest, _ = splitComment(rest)
	return splitMultiplier(strings.TrimSpace(rest))
}

// splitMultiplier separates an existing "× N" suffix from a meal name,
// defaulting the count to 1 when absent.
func splitMultiplier(name string) (string, int) {
	if m := multiplierRegex.FindStringSubmatch(name); m != nil {
		if count, err := strconv.Atoi(m[2]); err == nil && count > 0 {
			return strings.TrimSpace(m[1]), count
		}
	}
	return name, 1
}

// formatGrams renders a gram total without trailing zeros.
func formatGrams(grams float64) string {
	return strconv.FormatFloat(grams, 'f', -1, 64)
}
