package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/internal/decision"
	"github.com/moneypit/moneypit/pkg/types"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" (also the empty string) and "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table or json)", s)
}

// Diagnostic is one server-side observation about a verdict.
type Diagnostic struct {
	Key    string   `json:"key"`
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

// Result is what the CLI prints for evaluate and simulate. Diagnostics,
// Generation and Cached are only set when a server produced the report.
type Result struct {
	decision.Report

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Generation  uint64       `json:"generation,omitempty"`
	Cached      bool         `json:"cached,omitempty"`
}

// NewTable returns a table writer in the CLI's house style that renders to w.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render: encode json: %w", err)
	}
	return nil
}

// Report writes res in format f.
func Report(w io.Writer, f Format, res Result) error {
	if f == FormatJSON {
		return JSON(w, res)
	}

	r := res.Report
	fmt.Fprintf(w, "Verdict:  %s (%s)\n", r.Verdict.State, r.Verdict.Hint.Label)
	fmt.Fprintf(w, "          %s\n", r.Verdict.Narrative)
	fmt.Fprintf(w, "Vehicle:  %s\n", describeVehicle(r.Input))
	if res.Generation > 0 {
		cached := ""
		if res.Cached {
			cached = ", cached"
		}
		fmt.Fprintf(w, "Source:   coefficients %s, generation %d%s\n", r.CoefficientsVersion, res.Generation, cached)
	} else if r.CoefficientsVersion != "" {
		fmt.Fprintf(w, "Source:   coefficients %s\n", r.CoefficientsVersion)
	}
	fmt.Fprintln(w)

	scores := NewTable(w)
	scores.SetTitle("Regret")
	scores.AppendHeader(table.Row{"Term", "Points"})
	scores.AppendRows([]table.Row{
		{"Repair", r.Fixing.RepairPoints},
		{"Future risk", points(r.Fixing.FutureRiskPoints)},
		{"Pain", points(r.Fixing.PainPoints)},
	})
	scores.AppendSeparator()
	scores.AppendRow(table.Row{"Regret of fixing (RF)", points(r.Fixing.Total)})
	scores.AppendSeparator()
	scores.AppendRows([]table.Row{
		{"Switching friction", points(r.Moving.FrictionPoints)},
		{"Liquidity", points(r.Moving.LiquidityPoints)},
	})
	scores.AppendSeparator()
	scores.AppendRow(table.Row{"Regret of moving (RM)", points(r.Moving.Total)})
	scores.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	scores.Render()

	costs := NewTable(w)
	costs.SetTitle("Costs")
	costs.AppendHeader(table.Row{"Item", "Amount", "Note"})
	for _, li := range r.LineItems {
		amount := li.Amount
		if li.IsSaving {
			amount = "+" + amount
		}
		costs.AppendRow(table.Row{li.Label, amount, li.Description})
	}
	costs.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: 60},
	})
	costs.Render()

	if len(res.Diagnostics) > 0 {
		diags := NewTable(w)
		diags.SetTitle("Diagnostics")
		diags.AppendHeader(table.Row{"Level", "Hint", "Detail"})
		for _, d := range res.Diagnostics {
			diags.AppendRow(table.Row{d.Level, d.Title, d.Detail})
		}
		diags.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 60}})
		diags.Render()
	}
	return nil
}

// coefficientsView is the JSON shape of a coefficient store.
type coefficientsView struct {
	Version           string                               `json:"version"`
	Divisor           float64                              `json:"divisor"`
	CascadeMultiplier float64                              `json:"cascade_multiplier"`
	Systems           []string                             `json:"systems"`
	Buckets           map[coeffs.Bucket]map[string]float64 `json:"buckets"`
	CostRanges        map[string]coeffs.CostRange          `json:"cost_ranges"`
	Sellability       map[coeffs.Condition]float64         `json:"sellability"`
	Depreciation      map[types.VehicleType]float64        `json:"depreciation,omitempty"`
}

// Coefficients writes the tables held by st in format f.
func Coefficients(w io.Writer, f Format, st *coeffs.Store) error {
	file := st.File()
	if f == FormatJSON {
		return JSON(w, coefficientsView{
			Version:           st.Version(),
			Divisor:           st.Divisor(),
			CascadeMultiplier: st.CascadeMultiplier(),
			Systems:           st.Systems(),
			Buckets:           file.Failure.Buckets,
			CostRanges:        file.Failure.CostRanges,
			Sellability:       file.Sellability,
			Depreciation:      file.Depreciation,
		})
	}

	fmt.Fprintf(w, "Version:             %s\n", st.Version())
	fmt.Fprintf(w, "Divisor:             %g per point\n", st.Divisor())
	fmt.Fprintf(w, "Cascade multiplier:  %g\n\n", st.CascadeMultiplier())

	systems := st.Systems()
	probs := NewTable(w)
	probs.SetTitle("Failure probability")
	header := table.Row{"System"}
	for _, b := range coeffs.Buckets {
		header = append(header, string(b))
	}
	probs.AppendHeader(header)
	for _, sys := range systems {
		row := table.Row{sys}
		for _, b := range coeffs.Buckets {
			if p, ok := st.FailureProbability(b, sys); ok {
				row = append(row, fmt.Sprintf("%.2f", p))
			} else {
				row = append(row, "-")
			}
		}
		probs.AppendRow(row)
	}
	probs.Render()

	costs := NewTable(w)
	costs.SetTitle("Cost range (points)")
	costs.AppendHeader(table.Row{"System", "Min", "Max", "Midpoint"})
	for _, sys := range sortedKeys(file.Failure.CostRanges) {
		cr := file.Failure.CostRanges[sys]
		costs.AppendRow(table.Row{sys, points(cr.Min), points(cr.Max), points(cr.Midpoint())})
	}
	costs.Render()

	sell := NewTable(w)
	sell.SetTitle("Sellability")
	sell.AppendHeader(table.Row{"Condition", "Factor"})
	for _, c := range coeffs.Conditions {
		if v, ok := file.Sellability[c]; ok {
			sell.AppendRow(table.Row{string(c), fmt.Sprintf("%.2f", v)})
		}
	}
	sell.Render()

	if len(file.Depreciation) > 0 {
		dep := NewTable(w)
		dep.SetTitle("Annual depreciation override")
		dep.AppendHeader(table.Row{"Type", "Rate"})
		for _, t := range types.VehicleTypes {
			if v, ok := file.Depreciation[t]; ok {
				dep.AppendRow(table.Row{string(t), fmt.Sprintf("%.0f%%", v*100)})
			}
		}
		dep.Render()
	}
	return nil
}

func describeVehicle(in types.EngineInput) string {
	s := string(in.Type)
	if name := strings.TrimSpace(in.Brand + " " + in.Model); name != "" {
		s += " (" + name + ")"
	}
	if in.Year != 0 {
		s += fmt.Sprintf(", %d", in.Year)
	}
	return s + fmt.Sprintf(", %d miles", in.Mileage)
}

func points(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
