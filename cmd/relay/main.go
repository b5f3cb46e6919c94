// cmd/relay/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/tamzrod/faction-relay/internal/api"
	"github.com/tamzrod/faction-relay/internal/chat/discord"
	"github.com/tamzrod/faction-relay/internal/clock"
	"github.com/tamzrod/faction-relay/internal/config"
	"github.com/tamzrod/faction-relay/internal/message"
	"github.com/tamzrod/faction-relay/internal/notice"
	"github.com/tamzrod/faction-relay/internal/poller"
	"github.com/tamzrod/faction-relay/internal/snapshot"
	"github.com/tamzrod/faction-relay/internal/status"
	"github.com/tamzrod/faction-relay/internal/topic"
	"github.com/tamzrod/faction-relay/internal/war"
	"github.com/tamzrod/faction-relay/internal/writer"
)

// sweepEvery drops expired snapshots so idle keys do not pin memory.
const sweepEvery = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath, logLevel, logFormat string

	flagSet := pflag.NewFlagSet("relay", pflag.ContinueOnError)
	flagSet.StringVarP(&cfgPath, "config", "c", "relay.yaml", "path to the YAML config")
	flagSet.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	flagSet.StringVar(&logFormat, "log-format", "text", "text or json")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger, err := newLogger(logLevel, logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	r := cfg.Relay

	// --------------------
	// External collaborators
	// --------------------

	fetcher, err := api.New(api.Config{
		BaseURL:           r.API.BaseURL,
		Keys:              splitKeys(os.Getenv(r.API.KeysEnv)),
		Timeout:           time.Duration(r.API.TimeoutMs) * time.Millisecond,
		RequestsPerMinute: r.API.RequestsPerMinute,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("api client (keys from $%s): %w", r.API.KeysEnv, err)
	}

	chatClient, err := discord.Open(os.Getenv(r.Discord.TokenEnv))
	if err != nil {
		return fmt.Errorf("discord client (token from $%s): %w", r.Discord.TokenEnv, err)
	}

	// --------------------
	// Core state
	// --------------------

	clk := clock.Real()
	tracker := status.NewTracker(clk)
	cache := snapshot.NewCache(clk)
	registry := message.NewRegistry(chatClient, logger)
	notices := notice.NewManager(chatClient, clk, logger, notice.Config{
		ExpireAfter: minutes(r.Notices.ExpireMin),
		RemoveAfter: minutes(r.Notices.RemoveMin),
	})
	defer notices.Close()

	resolver := war.NewResolver(classifier(r.War))

	handlers := topic.Handlers(topic.Deps{
		Cache:     cache,
		Registry:  registry,
		Notices:   notices,
		Tracker:   tracker,
		Resolver:  resolver,
		Logger:    logger,
		FactionID: r.FactionID,
	})

	sched, err := poller.Build(r.Monitors, poller.Env{
		Fetcher:  fetcher,
		Clock:    clk,
		Tracker:  tracker,
		Logger:   logger,
		Handlers: handlers,
	})
	if err != nil {
		return err
	}

	// --------------------
	// Status export (optional)
	// --------------------

	exporter, closeExporter, err := buildExporter(r, tracker, clk, logger)
	if err != nil {
		return err
	}
	defer closeExporter()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if r.MetricsAddr != "" {
		go serveMetrics(ctx, r.MetricsAddr, logger)
	}

	go exporter.Run(ctx)
	go sweep(ctx, clk, cache)

	sched.Start(ctx)
	logger.Info("relay started",
		"monitors", len(r.Monitors),
		"faction_id", r.FactionID,
		"api_keys", fetcher.UsableKeys(),
	)

	<-ctx.Done()

	logger.Info("shutting down")
	sched.Shutdown()
	sched.Wait()
	return nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("--log-format: unknown format %q", format)
	}
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func classifier(w config.WarConfig) war.Classifier {
	c := war.DefaultClassifier()
	if len(w.EnlistMarkers) > 0 {
		c.Enlist = w.EnlistMarkers
	}
	if len(w.UnenlistMarkers) > 0 {
		c.Unenlist = w.UnenlistMarkers
	}
	if len(w.DefeatMarkers) > 0 {
		c.Defeat = w.DefeatMarkers
	}
	return c
}

func buildExporter(r config.RelayConfig, tracker *status.Tracker, clk clock.Clock, logger *slog.Logger) (*writer.Exporter, func(), error) {
	if r.StatusMemory == nil {
		e, err := writer.NewExporter(tracker, nil, nil, clk, logger)
		return e, func() {}, err
	}

	cli, err := writer.BuildEndpointClient(*r.StatusMemory)
	if err != nil {
		return nil, nil, fmt.Errorf("status memory %s: %w", r.StatusMemory.Endpoint, err)
	}
	e, err := writer.NewExporter(tracker, writer.BuildPlans(r), cli, clk, logger)
	if err != nil {
		_ = cli.Close()
		return nil, nil, err
	}
	return e, func() { _ = cli.Close() }, nil
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}

func sweep(ctx context.Context, clk clock.Clock, cache *snapshot.Cache) {
	t := clk.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cache.Sweep()
		}
	}
}
