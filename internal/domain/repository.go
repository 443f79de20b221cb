package domain

import "context"

// FoodDatabase defines the read-only food entry collection the resolver
// matches against. Implementations return a stable snapshot per call.
type FoodDatabase interface {
	Entries(ctx context.Context) ([]FoodEntry, error)
}

// DocumentStore defines access to raw macros-block text keyed by block
// ID. Parsing never writes; the write path exists for merge-based edits.
type DocumentStore interface {
	GetBlockLines(ctx context.Context, id string) ([]string, error)
	SaveBlockLines(ctx context.Context, id string, lines []string) error
	ListBlockIDs(ctx context.Context) ([]string, error)
}

// BlockCache defines the interface for caching parsed block results.
// The cache is owned by callers of the engine; the engine itself always
// recomputes from the lines it is given.
type BlockCache interface {
	Get(ctx context.Context, id string) (*BlockView, error)
	Set(ctx context.Context, id string, view *BlockView) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
