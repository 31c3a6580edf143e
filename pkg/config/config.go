package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the service looks for its configuration.
const DefaultPath = "configs/apexgo.yaml"

// Environment overrides. They win over the file.
const (
	EnvUDPAddr      = "APEXGO_UDP_ADDR"
	EnvServerAddr   = "APEXGO_SERVER_ADDR"
	EnvLogLevel     = "APEXGO_LOG_LEVEL"
	EnvCANInterface = "APEXGO_CAN_INTERFACE"
	EnvVehicleIndex = "APEXGO_VEHICLE_INDEX"
)

const (
	maxDatagramLimit = 65535
	minDatagramLimit = 64
	maxVehicleIndex  = 21
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	Listener ListenerConfig `yaml:"listener"`
	Demo     DemoConfig     `yaml:"demo"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Haptics  HapticsConfig  `yaml:"haptics"`
	CAN      CANConfig      `yaml:"can"`
}

// ListenerConfig holds the UDP telemetry listener settings.
type ListenerConfig struct {
	Address     string `yaml:"address"`
	MaxDatagram int    `yaml:"max_datagram"`
	// VehicleIndex selects the car to follow. -1 follows the player.
	VehicleIndex int  `yaml:"vehicle_index"`
	Trace        bool `yaml:"trace"`
}

// DemoConfig holds settings for the scripted demo race.
type DemoConfig struct {
	Tick             Duration `yaml:"tick"`
	Noise            bool     `yaml:"noise"`
	FlashProbability float64  `yaml:"flash_probability"`
	Seed             int64    `yaml:"seed"`
	DriverName       string   `yaml:"driver_name"`
	TeamID           uint8    `yaml:"team_id"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings    `yaml:"server"`
	Requests LogSettings    `yaml:"requests"`
	Rotate   RotateSettings `yaml:"rotate"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// RotateSettings bound the size and age of log files.
type RotateSettings struct {
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// HapticsConfig holds the gear-shift event dispatcher settings.
type HapticsConfig struct {
	Enabled   bool `yaml:"enabled"`
	QueueSize int  `yaml:"queue_size"`
}

// CANConfig holds settings for the optional CAN bus forwarder.
type CANConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Interface string   `yaml:"interface"`
	Interval  Duration `yaml:"interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listener: ListenerConfig{
			Address:      ":20777",
			MaxDatagram:  maxDatagramLimit,
			VehicleIndex: -1,
		},
		Demo: DemoConfig{
			Tick:             Duration(50 * time.Millisecond),
			Noise:            true,
			FlashProbability: 0.15,
			DriverName:       "Apex DEMO",
			TeamID:           8,
		},
		Server: ServerConfig{
			Address: "localhost:1920",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			Rotate: RotateSettings{
				MaxSizeMB:  25,
				MaxBackups: 5,
				MaxAgeDays: 7,
			},
		},
		Haptics: HapticsConfig{
			Enabled:   true,
			QueueSize: 16,
		},
		CAN: CANConfig{
			Enabled:   false,
			Interface: "vcan0",
			Interval:  Duration(20 * time.Millisecond),
		},
	}
}

// Load loads the configuration from path. A missing file is created with
// default values; an existing file is merged over the defaults and never
// written back. A .env file next to the config or in the working directory
// is loaded first, then environment overrides are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := LoadEnvFiles(filepath.Join(filepath.Dir(path), ".env"), ".env"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads the given .env files when they exist. Variables already
// set in the environment are kept.
func LoadEnvFiles(paths ...string) error {
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUDPAddr); ok && v != "" {
		c.Listener.Address = v
	}
	if v, ok := lookup(EnvServerAddr); ok && v != "" {
		c.Server.Address = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Server.Level = strings.ToUpper(v)
	}
	if v, ok := lookup(EnvCANInterface); ok && v != "" {
		c.CAN.Interface = v
		c.CAN.Enabled = true
	}
	if v, ok := lookup(EnvVehicleIndex); ok && v != "" {
		idx, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvVehicleIndex, v)
		}
		c.Listener.VehicleIndex = idx
	}
	return nil
}

var logLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	var errs []error
	if c.Listener.Address == "" {
		errs = append(errs, errors.New("listener.address is empty"))
	}
	if c.Listener.MaxDatagram < minDatagramLimit || c.Listener.MaxDatagram > maxDatagramLimit {
		errs = append(errs, fmt.Errorf("listener.max_datagram %d outside [%d, %d]",
			c.Listener.MaxDatagram, minDatagramLimit, maxDatagramLimit))
	}
	if c.Listener.VehicleIndex < -1 || c.Listener.VehicleIndex > maxVehicleIndex {
		errs = append(errs, fmt.Errorf("listener.vehicle_index %d outside [-1, %d]",
			c.Listener.VehicleIndex, maxVehicleIndex))
	}
	if c.Demo.Tick.Std() <= 0 {
		errs = append(errs, errors.New("demo.tick must be positive"))
	}
	if c.Demo.FlashProbability < 0 || c.Demo.FlashProbability > 1 {
		errs = append(errs, fmt.Errorf("demo.flash_probability %v outside [0, 1]", c.Demo.FlashProbability))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is empty"))
	}
	if lvl := strings.ToUpper(c.Log.Server.Level); lvl != "" && !logLevels[lvl] {
		errs = append(errs, fmt.Errorf("log.server.level %q is not one of DEBUG, INFO, WARN, ERROR", c.Log.Server.Level))
	}
	if c.Haptics.QueueSize < 1 {
		errs = append(errs, errors.New("haptics.queue_size must be at least 1"))
	}
	if c.CAN.Enabled {
		if c.CAN.Interface == "" {
			errs = append(errs, errors.New("can.interface is empty"))
		}
		if c.CAN.Interval.Std() <= 0 {
			errs = append(errs, errors.New("can.interval must be positive"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# apexgo configuration
# ---------------------
# Durations: ns, us, ms, s, m, h, d (day), w (week). Bare numbers are ms.
# Environment overrides: APEXGO_UDP_ADDR, APEXGO_SERVER_ADDR,
# APEXGO_LOG_LEVEL, APEXGO_CAN_INTERFACE, APEXGO_VEHICLE_INDEX.

`)
	data = append(header, data...)

	reVehicle := regexp.MustCompile(`(?m)^(\s+)vehicle_index:`)
	data = reVehicle.ReplaceAll(data, []byte("${1}# -1 follows the player car\n${1}vehicle_index:"))

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
