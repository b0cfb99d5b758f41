package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/moneypit/moneypit/cli/internal/remote"
	"github.com/moneypit/moneypit/cli/internal/render"
	"github.com/moneypit/moneypit/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a running server's health and counters",
	Long: "stats reads /api/v1/health and scrapes /metrics from --server and prints\n" +
		"verdict counts, cache effectiveness and coefficient reload history.",
	Args: cobra.NoArgs,
	RunE: runStats,
}

// statsView is the JSON shape of the stats command.
type statsView struct {
	Health *remote.Health `json:"health"`
	Stats  *remote.Stats  `json:"stats"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := requireServer("stats"); err != nil {
		return err
	}
	format, err := outputFormat()
	if err != nil {
		return err
	}
	c, err := remoteClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	h, err := c.Health(ctx)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	s, err := c.Stats(ctx)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == render.FormatJSON {
		return render.JSON(out, statsView{Health: h, Stats: s})
	}

	fmt.Fprintf(out, "Server:        %s (%s)\n", rootFlags.server, h.Status)
	fmt.Fprintf(out, "Coefficients:  %s, generation %d, loaded %s\n", h.CoefficientsVersion, h.Generation, h.LoadedAt)
	fmt.Fprintf(out, "Reloads:       %.0f ok, %.0f failed (%d alerts firing)\n", s.ReloadsOK, s.ReloadsFailed, h.AlertCount)
	fmt.Fprintf(out, "Cache:         %.0f hits, %.0f misses (%.0f%% hit ratio)\n", s.CacheHits, s.CacheMisses, s.HitRatio()*100)
	fmt.Fprintf(out, "Modes:         %.0f evaluate, %.0f simulate, %.0f ws\n",
		s.ByMode["evaluate"], s.ByMode["simulate"], s.ByMode["ws"])
	fmt.Fprintf(out, "Simulators:    %.0f connected\n\n", s.WSClients)

	t := render.NewTable(out)
	t.SetTitle("Verdicts served")
	t.AppendHeader(table.Row{"State", "Count"})
	var total float64
	for _, state := range []types.VerdictState{types.Stable, types.Borderline, types.TimeBomb} {
		n := s.Verdicts[string(state)]
		total += n
		t.AppendRow(table.Row{string(state), fmt.Sprintf("%.0f", n)})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.0f", total)})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight}})
	t.Render()
	return nil
}
