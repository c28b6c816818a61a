// camportald simulates the camera portal device.
//
// It serves the configuration portal (WiFi provisioning, admin tokens, quit)
// and the data portal (stream gate, MJPEG stream) from one process, backed by
// SQLite. Portal events are published on MQTT and written to InfluxDB when
// those are enabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/camportal/migrations"

	"github.com/nerrad567/camportal/internal/api"
	"github.com/nerrad567/camportal/internal/auth"
	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/database"
	"github.com/nerrad567/camportal/internal/infrastructure/influxdb"
	"github.com/nerrad567/camportal/internal/infrastructure/logging"
	"github.com/nerrad567/camportal/internal/infrastructure/mqtt"
	"github.com/nerrad567/camportal/internal/stream"
	"github.com/nerrad567/camportal/internal/telemetry"
	"github.com/nerrad567/camportal/internal/wifi"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting camportald",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"device_id", cfg.Device.ID,
		"hostname", cfg.Device.Hostname,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", db.Path())

	tokens := auth.NewTokenRepository(db.DB)
	if _, seedErr := auth.SeedToken(ctx, tokens, cfg.Security.BootstrapToken, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin token: %w", seedErr)
	}

	sealer, err := wifi.NewSealer(cfg.Security.StorageKey)
	if err != nil {
		return fmt.Errorf("creating credential sealer: %w", err)
	}

	state := stream.NewState()

	// Interfaces stay nil, not typed-nil, when a sink is disabled.
	var publisher telemetry.Publisher
	var metrics telemetry.MetricsWriter

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT, log)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		if subErr := mqttClient.Subscribe(mqtt.Topics{}.AllCommands(), byte(cfg.MQTT.QoS), stream.CommandHandler(state)); subErr != nil {
			return fmt.Errorf("subscribing to commands: %w", subErr)
		}
		publisher = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		metrics = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	recorder := telemetry.NewRecorder(telemetry.Options{
		DeviceID:  cfg.Device.ID,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    log,
	})

	server, err := api.New(api.Deps{
		ConfigServer: cfg.ConfigServer,
		DataServer:   cfg.DataServer,
		Stream:       cfg.Stream,
		Security:     cfg.Security,
		DeviceID:     cfg.Device.ID,
		PagesDir:     cfg.Device.PagesDir,
		Logger:       log,
		DB:           db,
		Tokens:       tokens,
		WiFi:         wifi.NewStore(db.DB, sealer),
		State:        state,
		Telemetry:    recorder,
		Version:      version,
	})
	if err != nil {
		return fmt.Errorf("creating portal servers: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return recorder.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	log.Info("initialisation complete, waiting for shutdown signal")
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("camportald stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CAMPORTAL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(config.EnvPrefix + "CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
