package main

import (
	"github.com/spf13/cobra"

	"github.com/moneypit/moneypit/pkg/types"
)

var simulateFlags struct {
	vehicle  vehicleFlags
	severity string
	mobility string
	hassle   string
	horizon  int
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Score a vehicle under what-if controls",
	Long: "simulate is evaluate plus the controls an owner can move: what is broken,\n" +
		"whether the vehicle still drives, how they feel about switching, and how long\n" +
		"they plan to keep it. The horizon only adds a holding-cost projection.",
	Example: "  moneypit simulate --type sedan --mileage 120000 --quote 2500 --mobility needs_tow\n" +
		"  moneypit simulate --type luxury --mileage 80000 --hassle want_new_car --horizon 24",
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	addVehicleFlags(simulateCmd, &simulateFlags.vehicle)
	f := simulateCmd.Flags()
	f.StringVar(&simulateFlags.severity, "severity", "", "Known failure: unknown, suspension_brakes, engine_transmission")
	f.StringVar(&simulateFlags.mobility, "mobility", "", "drivable or needs_tow")
	f.StringVar(&simulateFlags.hassle, "hassle", "", "Switching attitude: hate_switching, neutral, want_new_car")
	f.IntVar(&simulateFlags.horizon, "horizon", 0, "Months you plan to keep the vehicle (0 = no projection)")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	req, err := simulateFlags.vehicle.request(cmd)
	if err != nil {
		return err
	}
	ctl := types.SimulationControls{
		Severity:        types.FailureSeverity(simulateFlags.severity),
		Mobility:        types.MobilityStatus(simulateFlags.mobility),
		Hassle:          types.HassleTolerance(simulateFlags.hassle),
		RetentionMonths: simulateFlags.horizon,
	}
	return report(cmd, req, ctl, true)
}
