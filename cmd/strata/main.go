package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stratadb/strata/internal/server"
	"github.com/stratadb/strata/pkg/config"
	"github.com/stratadb/strata/pkg/logger"
	"github.com/stratadb/strata/pkg/readbuffer"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "strata",
		Short: "Strata - in-memory columnar read buffer for time-series data",
		Long: `Strata is an in-memory, columnar store that ingests immutable chunks of
time-series data and answers selection, aggregation, windowed-aggregation and
schema-discovery queries over them.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Strata v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var configFile, address, logLevel string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the read buffer server",
		Long: `Run the HTTP server exposing ingest and query endpoints over an empty
read buffer store. Configuration is read from a YAML file; flags override it.

Example:
  strata serve --config strata.yaml --address :8086`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configFile, address, logLevel)
		},
	}
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to YAML config file")
	serveCmd.Flags().StringVar(&address, "address", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(configFile, address, logLevel string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Server.Address = address
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Encoding,
	}); err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	store := readbuffer.NewStore()
	srv, err := server.New(store, cfg, logger.Get())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
