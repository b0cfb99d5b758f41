package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/moneypit/moneypit/internal/coeffs"
	"github.com/moneypit/moneypit/server/internal/alerts"
	"github.com/moneypit/moneypit/server/internal/api"
	"github.com/moneypit/moneypit/server/internal/auth"
	"github.com/moneypit/moneypit/server/internal/cache"
	"github.com/moneypit/moneypit/server/internal/config"
	"github.com/moneypit/moneypit/server/internal/hotswap"
	"github.com/moneypit/moneypit/server/internal/metrics"
	"github.com/moneypit/moneypit/server/internal/service"
	"github.com/moneypit/moneypit/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to server config file; MONEYPIT_* environment variables override it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(cfg.Log.Logger(os.Stdout))
	slog.Info("moneypit-server starting", "config", *configPath)
	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"coefficients", cfg.Coefficients.Path,
		"watch", cfg.Coefficients.Watch,
		"cache_backend", cfg.Cache.Backend,
		"cache_ttl", cfg.Cache.TTL,
		"rate_limit_rps", cfg.RateLimit.RPS,
		"auth_mode", cfg.Auth.Mode,
	)

	if err := run(cfg); err != nil {
		slog.Error("moneypit-server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("moneypit-server shut down")
}

func run(cfg *config.Config) error {
	st, err := coeffs.Load(cfg.Coefficients.Path)
	if err != nil {
		return fmt.Errorf("load coefficients: %w", err)
	}
	slog.Info("coefficients loaded", "version", st.Version(), "systems", len(st.Systems()))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	holder := hotswap.New(st)
	m := metrics.New()
	m.SetGeneration(holder.Current().Generation)

	var c cache.Cache
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		mem := cache.NewMemory(cfg.Cache.TTL)
		g.Go(func() error { mem.Run(gctx); return nil })
		c = mem
	case config.CacheRedis:
		r := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword(), cfg.Cache.TTL)
		defer r.Close()
		if err := r.Ping(ctx); err != nil {
			// Redis failures degrade to cache misses; keep serving.
			slog.Warn("redis unreachable at startup", "addr", cfg.Cache.RedisAddr, "err", err)
		}
		c = r
	default:
		c = cache.Nop{}
	}

	svc := service.New(holder, c, m, cfg.Cache.TTL)
	lim := api.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if lim != nil {
		g.Go(func() error { lim.Run(gctx); return nil })
	}

	hub := ws.New(svc, m)
	g.Go(func() error { hub.Run(gctx); return nil })

	al := alerts.New(cfg.Alerts)
	defer al.Close()

	if cfg.Coefficients.Watch {
		path := cfg.Coefficients.Path
		g.Go(func() error {
			return coeffs.Watch(gctx, path,
				func(next *coeffs.Store) {
					snap := holder.Swap(next)
					m.Reload(nil, snap.Generation)
					al.ReloadSucceeded(path)
					slog.Info("serving new coefficient generation", "generation", snap.Generation)
					hub.Reloaded(gctx)
				},
				func(err error) {
					m.Reload(err, 0)
					al.ReloadFailed(path, err)
				})
		})
	}

	guard := auth.APIKey(cfg.Auth.Mode, cfg.Auth.Header, cfg.Auth.Key())

	mux := http.NewServeMux()
	mux.Handle("/api/", guard(api.New(svc, lim, al)))
	mux.Handle("/ws/simulate", guard(hub))
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: mux,
	}
	g.Go(func() error {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("moneypit-server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
