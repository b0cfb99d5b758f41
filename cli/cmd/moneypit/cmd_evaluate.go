package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moneypit/moneypit/cli/internal/render"
	"github.com/moneypit/moneypit/internal/decision"
	"github.com/moneypit/moneypit/internal/valuation"
	"github.com/moneypit/moneypit/pkg/types"
)

// vehicleFlags is shared by evaluate and simulate.
type vehicleFlags struct {
	vehicleType string
	mileage     int
	quote       float64
	value       float64
	brand       string
	model       string
	year        int
}

var evaluateFlags vehicleFlags

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a vehicle with neutral controls",
	Example: "  moneypit evaluate --type sedan --mileage 160000 --quote 3000 --value 10000\n" +
		"  moneypit evaluate --type suv --mileage 90000 -o json",
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	addVehicleFlags(evaluateCmd, &evaluateFlags)
}

func addVehicleFlags(cmd *cobra.Command, vf *vehicleFlags) {
	f := cmd.Flags()
	f.StringVar(&vf.vehicleType, "type", "", "Vehicle type: sedan, suv, truck_van, performance, luxury (required)")
	f.IntVar(&vf.mileage, "mileage", 0, "Odometer reading in miles (required)")
	f.Float64Var(&vf.quote, "quote", 0, "Repair quote; estimated from type and mileage when omitted")
	f.Float64Var(&vf.value, "value", 0, "Current market value; estimated from type and mileage when omitted")
	f.StringVar(&vf.brand, "brand", "", "Brand, for display")
	f.StringVar(&vf.model, "model", "", "Model, for display")
	f.IntVar(&vf.year, "year", 0, "Model year")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("mileage")
}

// request builds a validated VehicleRequest. Omitted --quote and --value stay
// nil so the estimator fills them in.
func (vf *vehicleFlags) request(cmd *cobra.Command) (types.VehicleRequest, error) {
	req := types.VehicleRequest{
		Type:    types.VehicleType(vf.vehicleType),
		Brand:   vf.brand,
		Model:   vf.model,
		Year:    vf.year,
		Mileage: vf.mileage,
	}
	if cmd.Flags().Changed("quote") {
		q := vf.quote
		req.RepairQuote = &q
	}
	if cmd.Flags().Changed("value") {
		v := vf.value
		req.CurrentValue = &v
	}
	if err := req.Validate(); err != nil {
		return types.VehicleRequest{}, fmt.Errorf("invalid vehicle: %w", err)
	}
	return req, nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	req, err := evaluateFlags.request(cmd)
	if err != nil {
		return err
	}
	return report(cmd, req, types.SimulationControls{}, false)
}

// report scores req under ctl, locally or on --server, and prints it.
func report(cmd *cobra.Command, req types.VehicleRequest, ctl types.SimulationControls, simulate bool) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	ctl, err = ctl.Normalize()
	if err != nil {
		return fmt.Errorf("invalid controls: %w", err)
	}

	var res render.Result
	if rootFlags.server != "" {
		if rootFlags.coefficients != "" {
			return errors.New("--coefficients and --server are mutually exclusive")
		}
		res, err = reportRemote(cmd, req, ctl, simulate)
	} else {
		res, err = reportLocal(req, ctl)
	}
	if err != nil {
		return err
	}
	return render.Report(cmd.OutOrStdout(), format, res)
}

func reportLocal(req types.VehicleRequest, ctl types.SimulationControls) (render.Result, error) {
	st, err := loadStore(rootFlags.coefficients)
	if err != nil {
		return render.Result{}, err
	}
	rep, err := decision.New(st).Report(valuation.Resolve(req), ctl)
	if err != nil {
		return render.Result{}, fmt.Errorf("evaluate: %w", err)
	}
	return render.Result{Report: rep}, nil
}

func reportRemote(cmd *cobra.Command, req types.VehicleRequest, ctl types.SimulationControls, simulate bool) (render.Result, error) {
	c, err := remoteClient()
	if err != nil {
		return render.Result{}, err
	}
	ctx := cmd.Context()
	if simulate {
		resp, err := c.Simulate(ctx, req, ctl)
		if err != nil {
			return render.Result{}, err
		}
		return fromRemote(resp), nil
	}
	resp, err := c.Evaluate(ctx, req)
	if err != nil {
		return render.Result{}, err
	}
	return fromRemote(resp), nil
}
