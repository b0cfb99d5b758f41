package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moneypit/moneypit/cli/internal/render"
)

var coefficientsCmd = &cobra.Command{
	Use:     "coefficients",
	Aliases: []string{"coeffs"},
	Short:   "Inspect and validate coefficient files",
}

var coefficientsValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Load a coefficient file and report whether it is usable",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoefficientsValidate,
}

var coefficientsShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the tables of a coefficient file (default: built-in reference dataset)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCoefficientsShow,
}

func init() {
	coefficientsCmd.AddCommand(coefficientsValidateCmd)
	coefficientsCmd.AddCommand(coefficientsShowCmd)
}

func runCoefficientsValidate(cmd *cobra.Command, args []string) error {
	st, err := loadStore(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %s, %d systems, divisor %g)\n",
		args[0], st.Version(), len(st.Systems()), st.Divisor())
	return nil
}

func runCoefficientsShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	path := rootFlags.coefficients
	if len(args) == 1 {
		path = args[0]
	}
	st, err := loadStore(path)
	if err != nil {
		return err
	}
	return render.Coefficients(cmd.OutOrStdout(), format, st)
}
