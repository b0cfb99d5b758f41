package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/moneypit/moneypit/internal/decision"
	"github.com/moneypit/moneypit/pkg/types"
)

// illiquidPoints is the liquidity term above which a vehicle counts as hard
// to sell.
const illiquidPoints = 100.0

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2}

// computeDiagnostics explains the main drivers of a report.
// Hints are ordered: critical first, then warnings, then info.
func computeDiagnostics(r decision.Report) []DiagnosticHint {
	hints := []DiagnosticHint{}
	rf, rm := r.Verdict.Hint.RF, r.Verdict.Hint.RM

	if r.Verdict.State == types.TimeBomb {
		gap := rf - rm
		hints = append(hints, DiagnosticHint{
			Key:   "money_pit",
			Level: "critical",
			Title: "Repairs outweigh moving on",
			Detail: fmt.Sprintf(
				"Keeping this vehicle carries %.0f more regret points than replacing it. "+
					"Expect this repair to be followed by others.", gap),
			Value: &gap,
		})
	}

	if math.Abs(rf-rm) <= decision.Margin {
		gap := math.Abs(rf - rm)
		hints = append(hints, DiagnosticHint{
			Key:   "too_close",
			Level: "info",
			Title: "Too close to call",
			Detail: fmt.Sprintf(
				"Fixing and moving are within %.0f points of each other. "+
					"Small changes in the quote or your priorities can flip the verdict.", gap),
			Value: &gap,
		})
	}

	if risk := r.Fixing.FutureRiskPoints; risk > float64(r.Fixing.RepairPoints) {
		hints = append(hints, DiagnosticHint{
			Key:   "hidden_repairs",
			Level: "warning",
			Title: "Hidden repairs ahead",
			Detail: "At this mileage the expected cost of the next failures is larger than " +
				"the repair in front of you. The quote is not the whole bill.",
			Value: &risk,
		})
	}

	if pain := r.Fixing.PainPoints; pain > 0 {
		hints = append(hints, DiagnosticHint{
			Key:    "breakdown_pain",
			Level:  "info",
			Title:  "Breakdown adds pain",
			Detail: "A tow or a known major failure adds hassle on top of the repair cost itself.",
			Value:  &pain,
		})
	}

	if liq := r.Moving.LiquidityPoints; liq >= illiquidPoints {
		hints = append(hints, DiagnosticHint{
			Key:   "hard_to_sell",
			Level: "warning",
			Title: "Hard to sell",
			Detail: "High-mileage vehicles fetch less and take longer to sell, " +
				"which makes replacing this one more painful.",
			Value: &liq,
		})
	}

	if r.Input.QuoteEstimated {
		hints = append(hints, DiagnosticHint{
			Key:   "estimated_quote",
			Level: "info",
			Title: "Quote was estimated",
			Detail: "No repair quote was given, so a typical deferred-maintenance cost " +
				"for this type and mileage was used. A real quote will sharpen the verdict.",
		})
	}
	if r.Input.ValueEstimated {
		hints = append(hints, DiagnosticHint{
			Key:   "estimated_value",
			Level: "info",
			Title: "Value was estimated",
			Detail: "No market value was given, so one was estimated from type and mileage.",
		})
	}

	if r.HoldingCost > 0 && r.HoldingCost > r.Input.CurrentValue/2 {
		hc := r.HoldingCost
		hints = append(hints, DiagnosticHint{
			Key:   "holding_cost",
			Level: "warning",
			Title: "Keeping it gets expensive",
			Detail: fmt.Sprintf(
				"Over %d months the projected bleed exceeds half the vehicle's current value.",
				r.Controls.RetentionMonths),
			Value: &hc,
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
