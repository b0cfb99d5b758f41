package decision

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/moneypit/moneypit/internal/bleed"
	"github.com/moneypit/moneypit/internal/regret"
	"github.com/moneypit/moneypit/pkg/types"
)

// bleedWindowMonths is the horizon AssetBleed projects over.
const bleedWindowMonths = 6

// Report is the full per-call output: verdict plus the numbers behind it.
type Report struct {
	Input    types.EngineInput        `json:"input"`
	Controls types.SimulationControls `json:"controls"`
	Verdict  types.VerdictResult      `json:"verdict"`

	Fixing regret.FixingBreakdown `json:"fixing"`
	Moving regret.MovingBreakdown `json:"moving"`

	// AssetBleed is the projected six-month cost of inaction.
	AssetBleed float64 `json:"asset_bleed"`
	// HoldingCost scales AssetBleed to Controls.RetentionMonths. Zero when no
	// horizon was given.
	HoldingCost float64 `json:"holding_cost,omitempty"`

	LineItems []types.CostLineItem `json:"line_items"`

	CoefficientsVersion string `json:"coefficients_version,omitempty"`
}

// Report evaluates in under ctl and assembles the supporting projections.
func (e *Engine) Report(in types.EngineInput, ctl types.SimulationControls) (Report, error) {
	fix, move, err := e.scores(in, ctl)
	if err != nil {
		return Report{}, err
	}

	bin := bleed.Input{
		Type:         in.Type,
		Mileage:      in.Mileage,
		RepairQuote:  in.RepairQuote,
		CurrentValue: in.CurrentValue,
	}
	if rate, ok := e.store.AnnualDepreciation(in.Type); ok {
		bin.AnnualDepreciation = &rate
	}
	bleedOut := bleed.Compute(bin)

	r := Report{
		Input:               in,
		Controls:            ctl,
		Verdict:             verdict(fix.Total, move.Total),
		Fixing:              fix,
		Moving:              move,
		AssetBleed:          bleedOut.Amount,
		CoefficientsVersion: e.store.Version(),
	}
	if ctl.RetentionMonths > 0 {
		r.HoldingCost = bleedOut.Amount * float64(ctl.RetentionMonths) / bleedWindowMonths
	}
	r.LineItems = lineItems(in, ctl, bleedOut, r.HoldingCost)
	return r, nil
}

func lineItems(in types.EngineInput, ctl types.SimulationControls, b bleed.Output, holding float64) []types.CostLineItem {
	quoteDesc := "Repair quote supplied by the shop."
	if in.QuoteEstimated {
		quoteDesc = "Estimated deferred-maintenance liability for this type and mileage."
	}
	valueDesc := "Market value you supplied, recovered if you sell now."
	if in.ValueEstimated {
		valueDesc = "Estimated market value, recovered if you sell now."
	}

	items := []types.CostLineItem{
		{
			Label:       "Repair quote",
			Amount:      FormatMoney(in.RepairQuote),
			Description: quoteDesc,
		},
		{
			Label:  "Six-month asset bleed",
			Amount: FormatMoney(b.Amount),
			Description: fmt.Sprintf("Depreciation at %.0f%% plus a %.0f%% chance the repair becomes unavoidable.",
				b.SemiAnnualRate*100, b.RiskProbability*100),
		},
		{
			Label:       "Current market value",
			Amount:      FormatMoney(in.CurrentValue),
			Description: valueDesc,
			IsSaving:    true,
		},
	}
	if ctl.RetentionMonths > 0 {
		items = append(items, types.CostLineItem{
			Label:       fmt.Sprintf("Holding cost over %d months", ctl.RetentionMonths),
			Amount:      FormatMoney(holding),
			Description: "Asset bleed projected over how long you plan to keep the vehicle.",
		})
	}
	return items
}

// FormatMoney renders v as whole currency with thousands separators, e.g.
// "$12,300" or "-$40".
func FormatMoney(v float64) string {
	r := math.Round(v)
	sign := ""
	if r < 0 {
		sign = "-"
	}
	return sign + "$" + humanize.Commaf(math.Abs(r))
}
