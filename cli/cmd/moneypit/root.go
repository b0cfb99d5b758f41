package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// envAPIKey supplies --api-key when the flag is not given.
const envAPIKey = "MONEYPIT_API_KEY"

var rootFlags struct {
	output       string
	coefficients string
	server       string
	apiKey       string
	apiKeyHeader string
	verbose      bool
}

var rootCmd = &cobra.Command{
	Use:   "moneypit",
	Short: "Decide whether to repair a vehicle or move on",
	Long: "moneypit weighs the regret of fixing a vehicle against the regret of replacing it\n" +
		"and answers STABLE, BORDERLINE or TIME_BOMB.\n\n" +
		"Reports are computed locally from a coefficient file (the built-in reference\n" +
		"dataset by default) or, with --server, by a running moneypit-server.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if rootFlags.verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.output, "output", "o", "table", "Output format: table or json")
	pf.StringVar(&rootFlags.coefficients, "coefficients", "", "Coefficient file (default: built-in reference dataset)")
	pf.StringVar(&rootFlags.server, "server", "", "moneypit-server base URL, e.g. http://localhost:8080")
	pf.StringVar(&rootFlags.apiKey, "api-key", "", "API key for --server (default $"+envAPIKey+")")
	pf.StringVar(&rootFlags.apiKeyHeader, "api-key-header", "X-API-Key", "Header carrying the API key")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log debug detail to stderr")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(coefficientsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
