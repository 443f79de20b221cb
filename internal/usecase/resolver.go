package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/macronotes/backend/internal/domain"
)

// Resolver maps food-name queries to database entries and scales their
// per-serving macros to a requested quantity.
type Resolver struct {
	db                 domain.FoodDatabase
	enableDebugLogging bool
}

// NewResolver creates a resolver backed by the given food database.
func NewResolver(db domain.FoodDatabase, enableDebugLogging bool) *Resolver {
	return &Resolver{db: db, enableDebugLogging: enableDebugLogging}
}

// Resolve looks up a food by name and returns a MacroRow scaled to the
// explicit gram quantity, or to the entry's stored serving size when
// hasGrams is false. Matching is case-insensitive: an exact name match
// wins; otherwise a unique substring match is accepted; zero matches or
// an ambiguous substring query yield ErrFoodNotFound/ErrFoodAmbiguous.
func (r *Resolver) Resolve(ctx context.Context, name string, grams float64, hasGrams bool) (*domain.MacroRow, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidRequest
	}

	entries, err := r.db.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	entry, err := matchEntry(entries, name)
	if err != nil {
		if r.enableDebugLogging {
			log.Printf("[RESOLVE] %q: %v", name, err)
		}
		return nil, err
	}

	if !entry.Valid() {
		if r.enableDebugLogging {
			log.Printf("[RESOLVE] %q: serving size %v is not a positive number", entry.Name, entry.ServingSizeGrams)
		}
		return nil, domain.ErrInvalidServingSize
	}

	quantity := entry.ServingSizeGrams
	if hasGrams {
		quantity = grams
	}
	scale := quantity / entry.ServingSizeGrams

	return &domain.MacroRow{
		Name:     entry.Name,
		Serving:  strconv.FormatFloat(quantity, 'f', -1, 64) + "g",
		Calories: round1(entry.Calories * scale),
		Protein:  round1(entry.Protein * scale),
		Fat:      round1(entry.Fat * scale),
		Carbs:    round1(entry.Carbs * scale),
	}, nil
}

// matchEntry applies the exact-then-unique-substring match policy over
// the entry names.
func matchEntry(entries []domain.FoodEntry, name string) (domain.FoodEntry, error) {
	query := strings.ToLower(strings.TrimSpace(name))

	var exact []domain.FoodEntry
	var partial []domain.FoodEntry
	for _, entry := range entries {
		entryName := strings.ToLower(entry.Name)
		if entryName == query {
			exact = append(exact, entry)
		} else if strings.Contains(entryName, query) {
			partial = append(partial, entry)
		}
	}

	switch {
	case len(exact) == 1:
		return exact[0], nil
	case len(exact) > 1:
		return domain.FoodEntry{}, domain.ErrFoodAmbiguous
	case len(partial) == 1:
		return partial[0], nil
	case len(partial) > 1:
		return domain.FoodEntry{}, domain.ErrFoodAmbiguous
	default:
		return domain.FoodEntry{}, domain.ErrFoodNotFound
	}
}

// round1 rounds to one decimal place. Row values are rounded before any
// totalling so that displayed items always foot to displayed totals.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
