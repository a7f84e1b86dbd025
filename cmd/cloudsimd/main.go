package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kostasthomson/cloud-simulator/internal/sim"
	"github.com/kostasthomson/cloud-simulator/internal/simd"
	"github.com/kostasthomson/cloud-simulator/pkg/config"
	"github.com/kostasthomson/cloud-simulator/pkg/logger"
)

func main() {
	var configPath string
	var outputPath string
	var httpAddr string
	var serve bool
	var logLevel string

	flag.StringVar(&configPath, "config", "", "path to a simulation config (JSON or YAML)")
	flag.StringVar(&outputPath, "output", "results.json", "path for the result file in one-shot mode")
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address in serve mode")
	flag.BoolVar(&serve, "serve", false, "expose the run service over HTTP instead of running once")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serve {
		runServer(ctx, stop, httpAddr)
		return
	}

	if configPath == "" {
		logger.Error("a -config file is required in one-shot mode")
		os.Exit(1)
	}
	runOnce(ctx, configPath, outputPath)
}

// runOnce loads a config, runs the simulation to completion, and writes the
// result file
func runOnce(ctx context.Context, configPath, outputPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	simulator, err := sim.New(cfg)
	if err != nil {
		logger.Error("failed to build simulator", "error", err)
		os.Exit(1)
	}

	result, err := simulator.Run(ctx)
	if err != nil {
		logger.Warn("simulation interrupted", "error", err)
	}
	if result == nil {
		os.Exit(1)
	}
	if err := result.WriteFile(outputPath); err != nil {
		logger.Error("failed to write results", "path", outputPath, "error", err)
		os.Exit(1)
	}
	logger.Info("results written", "path", outputPath,
		"accepted", result.Summary.TasksAccepted,
		"rejected", result.Summary.TasksRejected,
		"energy_kwh", result.Summary.EnergyKWh)
}

// runServer exposes the run service until the context is cancelled
func runServer(ctx context.Context, stop context.CancelFunc, httpAddr string) {
	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store)

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           simd.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
