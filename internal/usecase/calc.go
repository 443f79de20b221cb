package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/macronotes/backend/internal/domain"
)

// CalcService orchestrates the document store, line merger, and block
// parser to produce block-level and cross-block nutrition totals. Both
// the single-block view and the multi-block aggregate go through the
// same merge/parse/rounding path, so the two never diverge for the
// same source text.
type CalcService struct {
	store              domain.DocumentStore
	parser             *BlockParser
	enableDebugLogging bool
}

// NewCalcService creates a calc service with its dependencies.
func NewCalcService(store domain.DocumentStore, parser *BlockParser, enableDebugLogging bool) *CalcService {
	return &CalcService{store: store, parser: parser, enableDebugLogging: enableDebugLogging}
}

// SumGroups folds the groups' totals into one block-level MacroTotals.
// Group totals are already sums of rounded row values, so no further
// rounding happens here.
func SumGroups(groups []domain.Group) domain.MacroTotals {
	var totals domain.MacroTotals
	for _, group := range groups {
		totals.Add(group.Total)
	}
	return totals
}

// GetBlock fetches, merges, and parses one block. A failed line-list
// fetch propagates to the caller; a structurally empty block yields a
// view with no groups and all-zero totals.
func (s *CalcService) GetBlock(ctx context.Context, id string) (*domain.BlockView, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	lines, err := s.store.GetBlockLines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching block %q: %w", id, err)
	}

	groups := s.parser.Parse(ctx, MergeLines(lines))
	return &domain.BlockView{
		ID:     id,
		Groups: groups,
		Totals: SumGroups(groups),
	}, nil
}

// Aggregate computes per-block totals for each ID in input order and
// sums them into one cross-block aggregate. Blocks are fetched
// sequentially, one at a time, to bound concurrent I/O against the
// store. A block whose fetch fails is logged and dropped from the
// breakdown; a valid-but-empty block contributes zero totals, so
// callers must tolerate len(Breakdown) <= len(blockIDs).
func (s *CalcService) Aggregate(ctx context.Context, blockIDs []string) (*domain.CalcResult, error) {
	if len(blockIDs) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	result := &domain.CalcResult{Breakdown: make([]domain.CalcBreakdown, 0, len(blockIDs))}
	for _, id := range blockIDs {
		view, err := s.GetBlock(ctx, id)
		if err != nil {
			log.Printf("[CALC] skipping block %q: %v", id, err)
			continue
		}
		result.Breakdown = append(result.Breakdown, domain.CalcBreakdown{ID: id, Totals: view.Totals})
		result.Aggregate.Add(view.Totals)
	}
	return result, nil
}
