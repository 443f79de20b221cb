package domain

// LineKind identifies the semantic role of one line of macros notation
type LineKind string

const (
	LineID     LineKind = "id"     // "id: <token>" block identifier line
	LineMeal   LineKind = "meal"   // "meal:<Name>" section declaration
	LineGroup  LineKind = "group"  // "group:<Name>" section declaration
	LineBullet LineKind = "bullet" // "- <FoodQuery>" item under a section
	LineItem   LineKind = "item"   // bare food line outside any section
)

// ParsedLine is the classified form of one raw notation line.
// It is constructed per source line and consumed immediately by the
// block parser; it is never persisted.
type ParsedLine struct {
	Kind         LineKind
	RawText      string
	Name         string
	QuantityText string
	Comment      string
	Timestamp    string
	Count        int // meal/group repeat multiplier, 1 when absent
}

// FoodEntry is one entry of the food database: per-serving macros for a
// uniquely named food. Read-only to this core.
type FoodEntry struct {
	Name             string  `json:"name"`
	ServingSizeGrams float64 `json:"servingSizeGrams"`
	Calories         float64 `json:"calories"`
	Protein          float64 `json:"protein"`
	Fat              float64 `json:"fat"`
	Carbs            float64 `json:"carbs"`
}

// Valid reports whether the entry can be used for resolution.
// Entries with a non-positive serving size are unresolvable.
func (e FoodEntry) Valid() bool {
	return e.ServingSizeGrams > 0
}

// MacroTotals is the four-field nutrition aggregate, reused at group,
// block, and cross-block scope.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Add accumulates other into t component-wise.
func (t *MacroTotals) Add(other MacroTotals) {
	t.Calories += other.Calories
	t.Protein += other.Protein
	t.Fat += other.Fat
	t.Carbs += other.Carbs
}

// MacroRow is one resolved food line: an entry scaled to the requested
// quantity, each field already rounded to one decimal. MacroLine holds
// the normalized source text used to re-locate the row for edits.
type MacroRow struct {
	Name      string  `json:"name"`
	Serving   string  `json:"serving"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Fat       float64 `json:"fat"`
	Carbs     float64 `json:"carbs"`
	MacroLine string  `json:"macroLine"`
}

// Totals returns the row's nutrition fields as a MacroTotals value.
func (r MacroRow) Totals() MacroTotals {
	return MacroTotals{
		Calories: r.Calories,
		Protein:  r.Protein,
		Fat:      r.Fat,
		Carbs:    r.Carbs,
	}
}

// Group is a named section of rows within a block. Total is the
// component-wise sum of the already-rounded row values, so displayed
// line items always foot exactly to the displayed group total.
// MacroLine is present for explicit meal:/group: sections only.
type Group struct {
	Name      string      `json:"name"`
	Rows      []MacroRow  `json:"rows"`
	Total     MacroTotals `json:"total"`
	MacroLine string      `json:"macroLine,omitempty"`
	Count     int         `json:"count"`
}

// OtherItemsGroup is the name of the implicit group holding bare items.
const OtherItemsGroup = "Other Items"

// BlockView is the fully parsed form of one macros block: its groups in
// display order plus the block-level totals.
type BlockView struct {
	ID     string      `json:"id"`
	Groups []Group     `json:"groups"`
	Totals MacroTotals `json:"totals"`
}

// CalcBreakdown is the per-block entry of a multi-block comparison.
// ID is an opaque block identifier, often a date string.
type CalcBreakdown struct {
	ID     string      `json:"id"`
	Totals MacroTotals `json:"totals"`
}

// CalcResult is the outcome of aggregating many blocks: the combined
// totals plus one breakdown entry per successfully processed block.
type CalcResult struct {
	Aggregate MacroTotals     `json:"aggregate"`
	Breakdown []CalcBreakdown `json:"breakdown"`
}
