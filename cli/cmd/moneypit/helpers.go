package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/moneypit/moneypit/cli/internal/remote"
	"github.com/moneypit/moneypit/cli/internal/render"
	"github.com/moneypit/moneypit/internal/coeffs"
)

// outputFormat parses --output.
func outputFormat() (render.Format, error) {
	return render.ParseFormat(rootFlags.output)
}

// loadStore returns the coefficients named by path, or the reference
// dataset when path is empty.
func loadStore(path string) (*coeffs.Store, error) {
	if path == "" {
		return coeffs.Reference(), nil
	}
	st, err := coeffs.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("coefficients loaded", "path", path, "version", st.Version())
	return st, nil
}

// remoteClient builds a client for --server.
func remoteClient() (*remote.Client, error) {
	key := rootFlags.apiKey
	if key == "" {
		key = os.Getenv(envAPIKey)
	}
	return remote.New(rootFlags.server, remote.Options{
		APIKey:       key,
		APIKeyHeader: rootFlags.apiKeyHeader,
	})
}

// fromRemote converts a server response into the printable result.
func fromRemote(resp *remote.Response) render.Result {
	res := render.Result{
		Report:     resp.Report,
		Generation: resp.Generation,
		Cached:     resp.Cached,
	}
	for _, d := range resp.Diagnostics {
		res.Diagnostics = append(res.Diagnostics, render.Diagnostic(d))
	}
	return res
}

func requireServer(cmdName string) error {
	if rootFlags.server == "" {
		return fmt.Errorf("%s needs --server", cmdName)
	}
	return nil
}
