package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"
	"github.com/tebeka/selenium"
	"go.uber.org/zap"

	"easyselenium/internal/monitoring"
	"easyselenium/internal/repository"
	"easyselenium/internal/workflows"
	"easyselenium/pkg/browser"
)

type runOptions struct {
	owner        string
	params       workflows.RunParams
	input        string
	debug        bool
	local        bool
	chromedriver string
	driverPort   int
	metricsAddr  string
	noRegistry   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a session, open a page, optionally type and capture it, then close",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.params.URL, "url", "", "Page to open (required)")
	f.StringVar(&opts.owner, "owner", defaultOwner(), "Label recorded as the session owner")
	f.StringVar(&opts.params.WaitSelector, "wait", "", "CSS selector to wait for after navigation")
	f.DurationVar(&opts.params.WaitTimeout, "wait-timeout", browser.DefaultElementWait, "How long to wait for --wait")
	f.StringVar(&opts.input, "type", "", "Type into an input, as selector=text")
	f.BoolVar(&opts.params.Submit, "submit", false, "Press Enter after --type")
	f.StringVar(&opts.params.ScreenshotPath, "screenshot", "", "Write a PNG screenshot to this path")
	f.BoolVar(&opts.debug, "debug", false, "Start with the debug arguments (visible browser)")
	f.BoolVar(&opts.local, "local", false, "Use a chrome binary found on this machine")
	f.StringVar(&opts.chromedriver, "chromedriver", "", "Start this chromedriver binary and use it instead of the configured host")
	f.IntVar(&opts.driverPort, "driver-port", 9515, "Port for --chromedriver")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	f.BoolVar(&opts.noRegistry, "no-registry", false, "Do not record the session in the registry")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runRun(ctx context.Context, opts *runOptions) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if opts.input != "" {
		sel, text, ok := strings.Cut(opts.input, "=")
		if !ok || sel == "" {
			return fmt.Errorf("--type must be selector=text, got %q", opts.input)
		}
		opts.params.InputSelector, opts.params.InputText = sel, text
	}
	if opts.debug {
		cfg.Selenium.Debug = true
	}
	if opts.local && cfg.Selenium.BinaryPath == "" {
		if path, has := launcher.LookPath(); has {
			cfg.Selenium.BinaryPath = path
			logger.Info("Using local browser", zap.String("path", path))
		} else {
			logger.Warn("No local browser found, leaving binary to the driver")
		}
	}

	if opts.chromedriver != "" {
		service, err := selenium.NewChromeDriverService(opts.chromedriver, opts.driverPort)
		if err != nil {
			return fmt.Errorf("failed to start chromedriver: %w", err)
		}
		defer func() {
			if err := service.Stop(); err != nil {
				logger.Error("Failed to stop chromedriver", zap.Error(err))
			}
		}()
		cfg.Selenium.Host = fmt.Sprintf("http://localhost:%d", opts.driverPort)
	}

	loggers := browser.MultiLogger{}
	if verbose {
		loggers = append(loggers, browser.NewZapLogger(logger))
	}

	if !opts.noRegistry {
		repo, err := repository.NewSQLiteRepository(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize registry: %w", err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close registry", zap.Error(err))
			}
		}()
		loggers = append(loggers, repository.NewPingLogger(repo, cfg.Selenium.Host, logger))
	}

	if opts.metricsAddr != "" {
		metrics, err := monitoring.NewMetricsLogger(nil)
		if err != nil {
			return err
		}
		loggers = append(loggers, metrics)
		stop := serveMetrics(opts.metricsAddr, metrics.Handler(), logger)
		defer stop()
	}

	session, err := workflows.NewSession(cfg, opts.owner, loggers)
	if err != nil {
		return err
	}

	result, err := workflows.NewRunWorkflow(session, logger).Run(ctx, &opts.params)
	if err != nil {
		return err
	}

	fmt.Printf("session %s: %s (%d bytes, %d console entries)\n",
		result.SessionID, result.CurrentURL, result.HTMLBytes, len(result.Console))
	return nil
}

func serveMetrics(addr string, handler http.Handler, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func defaultOwner() string {
	if host, err := os.Hostname(); err == nil {
		return "easyselenium@" + host
	}
	return "easyselenium"
}
