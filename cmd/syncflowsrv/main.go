package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/common/logtrace"
	"github.com/syncflow/syncflow/internal/connector/destination/postgres"
	"github.com/syncflow/syncflow/internal/connector/runner"
	"github.com/syncflow/syncflow/internal/connector/sync"
	"github.com/syncflow/syncflow/internal/connector/unitycatalog"
	"github.com/syncflow/syncflow/internal/govsrv/apis"
	"github.com/syncflow/syncflow/internal/govsrv/config"
	"github.com/syncflow/syncflow/internal/govsrv/governance"
	"github.com/syncflow/syncflow/internal/govsrv/server"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	configFile string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog := log.With().Str("state", "init").Logger()

	opt := parseFlags()

	slog.Info().Str("config_file", opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(opt.configFile); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	if config.Config().ServerPort == "" {
		return fmt.Errorf("server port not defined")
	}

	db, err := postgres.New(ctx, config.Config().Warehouse.DSN)
	if err != nil {
		return fmt.Errorf("connecting to warehouse: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("preparing warehouse schema: %w", err)
	}

	settings := config.Config().Connector.Settings()
	source := unitycatalog.New(settings.WorkspaceURL, settings.AccessToken,
		unitycatalog.WithRetryAttempts(config.Config().Sync.RetryAttempts))
	syncer := sync.New(source, db, sync.Options{
		AllowedCatalogs:  settings.AllowedCatalogs(),
		TableConcurrency: config.Config().Sync.TableConcurrency,
	})
	interval, err := config.Config().Sync.GetInterval()
	if err != nil {
		return fmt.Errorf("parsing sync interval: %w", err)
	}
	syncRunner := runner.New(syncer, db, interval)
	syncRunner.Start()

	engine := governance.New(db.Pool())
	s, err := server.CreateNewServer()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	s.MountHandlers(apis.New(engine, syncRunner))

	srv := &http.Server{
		Addr:    ":" + config.Config().ServerPort,
		Handler: s.Router,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	// Start the service listening for requests.
	go func() {
		slog.Info().Str("port", config.Config().ServerPort).Msg("server started")
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Wait forever until shutdown
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		// Give the runner and outstanding requests 5 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := syncRunner.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop sync runner gracefully")
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			if err := srv.Close(); err != nil {
				slog.Error().Err(err).Msg("could not stop server")
			}
		}
	}

	slog.Info().Msg("server stopped")
	return nil
}

const DefaultConfigFile = "/etc/syncflow/syncflowsrv.conf"

func parseFlags() cmdoptions {
	var opt cmdoptions
	flag.StringVar(&opt.configFile, "config", DefaultConfigFile, "Path to the config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
