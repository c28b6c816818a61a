package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "CAMPORTAL_"

// Config is the root configuration structure for the camportal device.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device       DeviceConfig   `yaml:"device"`
	ConfigServer ServerConfig   `yaml:"config_server" envPrefix:"CONFIG_SERVER_"`
	DataServer   ServerConfig   `yaml:"data_server" envPrefix:"DATA_SERVER_"`
	Database     DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	MQTT         MQTTConfig     `yaml:"mqtt" envPrefix:"MQTT_"`
	InfluxDB     InfluxDBConfig `yaml:"influxdb" envPrefix:"INFLUXDB_"`
	Logging      LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
	Security     SecurityConfig `yaml:"security"`
	Stream       StreamConfig   `yaml:"stream" envPrefix:"STREAM_"`
	Client       ClientConfig   `yaml:"client"`
}

// DeviceConfig identifies the device on the network and in telemetry.
type DeviceConfig struct {
	ID       string `yaml:"id" env:"DEVICE_ID"`
	Hostname string `yaml:"hostname" env:"DEVICE_HOSTNAME"`

	// PagesDir overrides the embedded portal pages when set, for editing
	// them without a rebuild.
	PagesDir string `yaml:"pages_dir" env:"DEVICE_PAGES_DIR"`
}

// ServerConfig contains HTTP listener settings for one of the two portal servers.
type ServerConfig struct {
	Enabled  bool                `yaml:"enabled" env:"ENABLED"`
	Host     string              `yaml:"host" env:"HOST"`
	Port     int                 `yaml:"port" env:"PORT"`
	Timeouts ServerTimeoutConfig `yaml:"timeouts"`
}

// ServerTimeoutConfig contains HTTP timeout settings in seconds.
// A zero write timeout leaves long-lived responses (the MJPEG feed) unbounded.
type ServerTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path" env:"PATH"`
	WALMode     bool   `yaml:"wal_mode" env:"WAL_MODE"`
	BusyTimeout int    `yaml:"busy_timeout" env:"BUSY_TIMEOUT"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled" env:"ENABLED"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos" env:"QOS"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	TLS      bool   `yaml:"tls" env:"TLS"`
	ClientID string `yaml:"client_id" env:"CLIENT_ID"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// The initial connection is attempted once; after a drop, paho retries
// with backoff capped at MaxDelay seconds.
type MQTTReconnectConfig struct {
	MaxDelay int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"ENABLED"`
	URL           string `yaml:"url" env:"URL"`
	Token         string `yaml:"token" env:"TOKEN"`
	Org           string `yaml:"org" env:"ORG"`
	Bucket        string `yaml:"bucket" env:"BUCKET"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	Output string `yaml:"output" env:"OUTPUT"`
}

// SecurityConfig contains token, session and at-rest encryption settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`

	// StorageKey seals WiFi credentials at rest.
	StorageKey string `yaml:"storage_key" env:"STORAGE_KEY"`

	// BootstrapToken is seeded into an empty token store on first start.
	// When empty a random token is generated and logged instead.
	BootstrapToken string `yaml:"bootstrap_token" env:"BOOTSTRAP_TOKEN"`
}

// JWTConfig contains stream session token settings.
type JWTConfig struct {
	Secret     string `yaml:"secret" env:"JWT_SECRET"`
	SessionTTL int    `yaml:"session_ttl" env:"JWT_SESSION_TTL"` // minutes
}

// StreamConfig contains video stream settings for the data server.
type StreamConfig struct {
	RequireSession bool          `yaml:"require_session" env:"REQUIRE_SESSION"`
	FrameInterval  time.Duration `yaml:"frame_interval" env:"FRAME_INTERVAL"`
	FrameWidth     int           `yaml:"frame_width"`
	FrameHeight    int           `yaml:"frame_height"`
	JPEGQuality    int           `yaml:"jpeg_quality"`
}

// ClientConfig contains settings for the camportal command line client.
type ClientConfig struct {
	// BaseURL is the portal origin the client talks to.
	BaseURL string `yaml:"base_url" env:"URL"`

	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CAMPORTAL_SECTION_KEY
// For example: CAMPORTAL_DATABASE_PATH, CAMPORTAL_DATA_SERVER_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadClient builds the command line client configuration from defaults and
// the environment. The client has no configuration file.
func LoadClient() (ClientConfig, error) {
	cfg := defaultConfig().Client
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return ClientConfig{}, fmt.Errorf("parsing client environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// Ports mirror the device firmware: configuration on 8080, data on 80.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:       "camportal-001",
			Hostname: "esp32videocam",
		},
		ConfigServer: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: ServerTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		DataServer: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    80,
			Timeouts: ServerTimeoutConfig{
				Read: 30,
				Idle: 60,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/camportal.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "camportal",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				MaxDelay: 60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				SessionTTL: 60,
			},
		},
		Stream: StreamConfig{
			RequireSession: true,
			FrameInterval:  100 * time.Millisecond,
			FrameWidth:     800,
			FrameHeight:    600,
			JPEGQuality:    80,
		},
		Client: ClientConfig{
			BaseURL: "http://192.168.4.1:8080",
		},
	}
}

// applyEnvOverrides applies CAMPORTAL_* environment variables on top of the
// loaded configuration. Unset variables leave the field untouched.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.ID == "" {
		errs = append(errs, "device.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if !c.ConfigServer.Enabled && !c.DataServer.Enabled {
		errs = append(errs, "at least one of config_server and data_server must be enabled")
	}
	if c.ConfigServer.Enabled && (c.ConfigServer.Port < 1 || c.ConfigServer.Port > 65535) {
		errs = append(errs, "config_server.port must be between 1 and 65535")
	}
	if c.DataServer.Enabled && (c.DataServer.Port < 1 || c.DataServer.Port > 65535) {
		errs = append(errs, "data_server.port must be between 1 and 65535")
	}
	if c.ConfigServer.Enabled && c.DataServer.Enabled && c.ConfigServer.Addr() == c.DataServer.Addr() {
		errs = append(errs, "config_server and data_server must listen on different addresses")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	// A forged session cookie unlocks the camera stream, so the signing
	// secret has the same minimum length as any other HS256 key here.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set CAMPORTAL_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if c.Security.StorageKey == "" {
		errs = append(errs, "security.storage_key is required (set CAMPORTAL_STORAGE_KEY environment variable)")
	}

	if c.Stream.FrameInterval <= 0 {
		errs = append(errs, "stream.frame_interval must be positive")
	}
	if c.Stream.JPEGQuality < 1 || c.Stream.JPEGQuality > 100 {
		errs = append(errs, "stream.jpeg_quality must be between 1 and 100")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Validate checks that the client configuration points at a usable origin.
func (c ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("client.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("client.base_url must be an http or https URL, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("client.base_url must include a host, got %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	return nil
}

// ReadTimeout returns the server read timeout as a Duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.Timeouts.Read) * time.Second
}

// WriteTimeout returns the server write timeout as a Duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.Timeouts.Write) * time.Second
}

// IdleTimeout returns the server idle timeout as a Duration.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.Timeouts.Idle) * time.Second
}

// SessionDuration returns the stream session lifetime as a Duration.
func (j JWTConfig) SessionDuration() time.Duration {
	return time.Duration(j.SessionTTL) * time.Minute
}
