package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/macronotes/backend/internal/domain"
)

// BlockParser turns an ordered line list for one macros block into an
// ordered list of groups with per-group totals. It never fails: lines
// that cannot be resolved or sections that are malformed are skipped
// with a debug-level note, since a block legitimately mixes resolvable
// and unresolvable items while it is being edited.
type BlockParser struct {
	resolver           *Resolver
	enableDebugLogging bool
}

// NewBlockParser creates a block parser using the given resolver.
func NewBlockParser(resolver *Resolver, enableDebugLogging bool) *BlockParser {
	return &BlockParser{resolver: resolver, enableDebugLogging: enableDebugLogging}
}

// Parse consumes the block's lines in one left-to-right pass. Explicit
// meal/group sections appear in source order; the implicit "Other
// Items" group collects bare items and is appended last, only when it
// has at least one row.
func (p *BlockParser) Parse(ctx context.Context, lines []string) []domain.Group {
	var groups []domain.Group
	var other *domain.Group

	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			i++
			continue
		}

		parsed := ClassifyLine(trimmed)
		switch parsed.Kind {
		case domain.LineID:
			i++

		case domain.LineMeal, domain.LineGroup:
			if parsed.Name == "" {
				// Malformed section: its bullets are presumed to belong
				// to it, so they are discarded rather than orphaned.
				if p.enableDebugLogging {
					log.Printf("[PARSE] skipping section with empty name: %q", trimmed)
				}
				i = p.skipBullets(lines, i+1)
				continue
			}
			group := domain.Group{
				Name:      parsed.Name,
				Rows:      []domain.MacroRow{},
				MacroLine: trimmed,
				Count:     parsed.Count,
			}
			i = p.consumeBullets(ctx, lines, i+1, &group)
			groups = append(groups, group)

		case domain.LineBullet:
			// A bullet is only valid directly under a meal/group.
			if p.enableDebugLogging {
				log.Printf("[PARSE] skipping bullet outside a section: %q", trimmed)
			}
			i++

		default:
			if row, ok := p.resolveLine(ctx, parsed, trimmed); ok {
				if other == nil {
					other = &domain.Group{Name: domain.OtherItemsGroup, Rows: []domain.MacroRow{}, Count: 1}
				}
				other.Rows = append(other.Rows, row)
				other.Total.Add(row.Totals())
			}
			i++
		}
	}

	if other != nil && len(other.Rows) > 0 {
		groups = append(groups, *other)
	}
	return groups
}

// consumeBullets appends all immediately following bullet lines to the
// group, stopping at the first non-bullet line. Blank lines inside the
// run are skipped rather than treated as terminators.
func (p *BlockParser) consumeBullets(ctx context.Context, lines []string, start int, group *domain.Group) int {
	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			i++
			continue
		}
		parsed := ClassifyLine(trimmed)
		if parsed.Kind != domain.LineBullet {
			return i
		}
		if row, ok := p.resolveLine(ctx, parsed, trimmed); ok {
			group.Rows = append(group.Rows, row)
			group.Total.Add(row.Totals())
		}
		i++
	}
	return i
}

// skipBullets advances past the bullet run following a malformed
// section declaration.
func (p *BlockParser) skipBullets(lines []string, start int) int {
	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			i++
			continue
		}
		if ClassifyLine(trimmed).Kind != domain.LineBullet {
			return i
		}
		i++
	}
	return i
}

// resolveLine resolves one classified bullet/item line into a MacroRow.
// Unresolvable lines are dropped, never raised.
func (p *BlockParser) resolveLine(ctx context.Context, parsed domain.ParsedLine, sourceLine string) (domain.MacroRow, bool) {
	if parsed.Name == "" {
		if p.enableDebugLogging {
			log.Printf("[PARSE] skipping line with empty food name: %q", sourceLine)
		}
		return domain.MacroRow{}, false
	}

	grams, hasGrams := ParseQuantityGrams(parsed.QuantityText)
	row, err := p.resolver.Resolve(ctx, parsed.Name, grams, hasGrams)
	if err != nil {
		if p.enableDebugLogging {
			log.Printf("[PARSE] skipping unresolvable item %q: %v", parsed.Name, err)
		}
		return domain.MacroRow{}, false
	}

	row.MacroLine = sourceLine
	return *row, true
}
