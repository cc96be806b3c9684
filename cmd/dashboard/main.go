package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/security-guardian-dashboard/internal/config"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/infra/guardianapi"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/infra/httpserver"
	"github.com/bryanwahyu/security-guardian-dashboard/internal/logger"
)

// set via -ldflags at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var cfgFile string

func main() {
	root := newRootCmd()
	root.CompletionOptions.DisableDefaultCmd = true
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// path config.yaml
	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}

	root := &cobra.Command{
		Use:          "guardian-dashboard [command]",
		SilenceUsage: true,
		Short:        "Web dashboard for the Security Guardian scanning service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", defaultPath, "config file (env CONFIG_PATH)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "guardian-dashboard %s (built %s, %s)\n", Version, BuildTime, runtime.Version())
		},
	})
	return root
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// load config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	log := logger.New("guardian-dashboard", cfg.Logger.Level, cfg.Logger.JSON)

	// init api client
	api := guardianapi.NewClient(guardianapi.Options{
		BaseURL: cfg.Backend.BaseURL,
		Debug:   cfg.Backend.Debug,
		Logger:  log.Named("guardianapi"),
	})

	// init router
	router := httpserver.NewRouter(httpserver.Options{
		Backend:        api,
		Location:       loc,
		Logger:         log,
		SessionTTL:     cfg.Session.TTL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateCapacity:   cfg.RateLimit.Capacity,
		RateRefill:     cfg.RateLimit.RefillRate,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go router.Sessions().Run(ctx, time.Minute)

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr, "backend", api.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
