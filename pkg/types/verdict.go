package types

// VerdictState is the discrete outcome of comparing RF against RM.
type VerdictState string

const (
	// Stable means repairing carries clearly less regret than moving on.
	Stable VerdictState = "STABLE"
	// Borderline is the hysteresis band. Callers must handle it as a real
	// answer, not as an error.
	Borderline VerdictState = "BORDERLINE"
	// TimeBomb means the vehicle is a money pit.
	TimeBomb VerdictState = "TIME_BOMB"
)

// MoneyPitLabel is the display label derived from a VerdictState.
type MoneyPitLabel string

const (
	DeepPit MoneyPitLabel = "DEEP_PIT"
	Surface MoneyPitLabel = "SURFACE"
)

// VisualizationHint carries the raw scores for charting.
type VisualizationHint struct {
	RF    float64       `json:"rf"`
	RM    float64       `json:"rm"`
	Label MoneyPitLabel `json:"label"`
}

// VerdictResult is produced once per evaluation and consumed immediately.
type VerdictResult struct {
	State     VerdictState      `json:"state"`
	Narrative string            `json:"narrative"`
	Hint      VisualizationHint `json:"hint"`
}

// CostLineItem is one row of the cost breakdown shown next to a verdict.
type CostLineItem struct {
	Label       string `json:"label"`
	Amount      string `json:"amount"` // formatted, e.g. "$12,300"
	Description string `json:"description"`
	IsSaving    bool   `json:"is_saving"`
}
