// Package main wires the YARHS edge server executable: load config, seed the
// registry, bind the data-plane and control-plane listeners, and run until a
// shutdown signal arrives. Structure adapted from cmd/proxy/main.go's
// flag-parse -> load -> run -> await-signal -> graceful-shutdown shape.
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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lhanjian/yarhs/pkg/accesslog"
	"github.com/lhanjian/yarhs/pkg/config"
	"github.com/lhanjian/yarhs/pkg/domain"
	"github.com/lhanjian/yarhs/pkg/httpserver"
	"github.com/lhanjian/yarhs/pkg/listener"
	"github.com/lhanjian/yarhs/pkg/logging"
	"github.com/lhanjian/yarhs/pkg/storage"
	"github.com/lhanjian/yarhs/pkg/telemetry"
	"github.com/lhanjian/yarhs/pkg/xds"
)

const (
	defaultConfigPath       = "config.yaml"
	defaultServiceName      = "yarhs"
	telemetryShutdownTimeout = 5 * time.Second
	gracefulShutdownTimeout  = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config-path", defaultConfigPath, "Path to the configuration file")
	otelEndpoint := flag.String("otel-endpoint", "", "OTLP endpoint")
	logLevel := flag.String("log-level", "", "Log level override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration load failed")
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logging.SetupLogger(logging.Config{Level: cfg.Logging.Level, Pretty: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg, *configPath, *otelEndpoint); err != nil {
		log.Fatal().Err(err).Msg("application failed")
	}
}

func run(ctx context.Context, cfg *config.Config, configPath, otelEndpoint string) error {
	telemetryShutdown, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: defaultServiceName,
		Endpoint:    otelEndpoint,
		Insecure:    true,
		Environment: os.Getenv("YARHS_ENVIRONMENT"),
	})
	if err != nil {
		return fmt.Errorf("telemetry initialization failed: %w", err)
	}
	defer shutdownTelemetry(telemetryShutdown)

	metricsReg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(metricsReg)

	var store storage.SnapshotStore = storage.NewMemoryStore()
	if cfg.Server.EnableStatePersistence {
		stateFile := cfg.Server.StateFile
		if stateFile == "" {
			stateFile = "yarhs-state.json"
		}
		fileStore := storage.NewFileStore(stateFile)
		store = fileStore
		if persisted, loadErr := fileStore.Load(); loadErr != nil {
			log.Warn().Err(loadErr).Msg("failed to load persisted state, starting from config file only")
		} else if persisted != nil {
			log.Info().Str("state_file", stateFile).Msg("restored config snapshot from persisted state")
			registry := domain.NewRegistry(persisted)
			return serve(ctx, cfg, configPath, registry, store, metrics, metricsReg, telemetryShutdown)
		}
	}

	registry := domain.NewRegistry(cfg.ToSnapshot())
	return serve(ctx, cfg, configPath, registry, store, metrics, metricsReg, telemetryShutdown)
}

func serve(ctx context.Context, cfg *config.Config, configPath string, registry *domain.Registry, store storage.SnapshotStore, metrics *telemetry.Metrics, metricsReg *prometheus.Registry, telemetryShutdown func(context.Context) error) error {
	access, err := accesslog.NewWriter(cfg.Logging.AccessLogFile)
	if err != nil {
		return fmt.Errorf("failed to open access log: %w", err)
	}

	dataHandler := otelhttp.NewHandler(httpserver.NewHandler(registry, access, metrics), "yarhs.data")
	dataSupervisor := listener.NewSupervisor(dataHandler, timeoutsFromSnapshot(registry.Current()), metrics)

	mainAddr := addrOf(registry.Current().Listener.Main)
	if err := dataSupervisor.Start(ctx, mainAddr); err != nil {
		return fmt.Errorf("data-plane listener bind failed: %w", err)
	}
	log.Info().Str("addr", mainAddr).Msg("data-plane listener started")

	apiSupervisorHolder := &apiSupervisor{}
	onListenerChange := func(change xds.ListenerChange) {
		if change.MainChanged {
			if err := dataSupervisor.Restart(ctx, addrOf(change.MainAddr)); err != nil {
				log.Error().Err(err).Msg("data-plane listener restart failed")
			}
		}
		if change.APIChanged {
			apiSupervisorHolder.restart(ctx, addrOf(change.APIAddr))
		}
	}

	xdsServer := xds.NewServer(registry, onListenerChange, store, metrics)

	apiMux := http.NewServeMux()
	apiMux.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	apiMux.Handle("/", xdsServer)

	apiHandler := otelhttp.NewHandler(apiMux, "yarhs.control")
	apiSupervisor := listener.NewSupervisor(apiHandler, timeoutsFromSnapshot(registry.Current()), metrics)
	apiSupervisorHolder.sup = apiSupervisor

	apiAddr := addrOf(registry.Current().Listener.API)
	if err := apiSupervisor.Start(ctx, apiAddr); err != nil {
		return fmt.Errorf("control-plane listener bind failed: %w", err)
	}
	log.Info().Str("addr", apiAddr).Msg("control-plane listener started")

	var watcher *config.Watcher
	if configPath != "" {
		watcher, err = config.NewWatcher(configPath, registry, store)
		if err != nil {
			log.Warn().Err(err).Msg("config file watch failed to start, hot-reload disabled")
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	awaitShutdownSignal()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := dataSupervisor.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("data-plane shutdown error")
	}
	if err := apiSupervisor.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("control-plane shutdown error")
	}
	return nil
}

// apiSupervisor lets onListenerChange restart the control-plane listener
// without a circular reference between it and the xds.Server it's built to
// host (the supervisor doesn't exist yet when onListenerChange is defined).
type apiSupervisor struct {
	sup *listener.Supervisor
}

func (a *apiSupervisor) restart(ctx context.Context, addr string) {
	if a.sup == nil {
		return
	}
	if err := a.sup.Restart(ctx, addr); err != nil {
		log.Error().Err(err).Msg("control-plane listener restart failed")
	}
}

func timeoutsFromSnapshot(snap *domain.ConfigSnapshot) listener.ServerTimeouts {
	return listener.ServerTimeouts{
		ReadTimeout:      snap.Performance.ReadTimeout,
		WriteTimeout:     snap.Performance.WriteTimeout,
		KeepAliveTimeout: snap.Performance.KeepAliveTimeout,
		MaxConnections:   snap.Performance.MaxConnections,
	}
}

func addrOf(e domain.Endpoint) string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

func shutdownTelemetry(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("telemetry shutdown error")
	}
}

func awaitShutdownSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("received signal, initiating graceful shutdown")
}
