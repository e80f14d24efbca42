// Package config provides configuration management for sentinel.
//
// Config is a YAML file with environment variable overrides for
// credentials and the listen address, so secrets stay out of the file.
// A .env file next to the binary is loaded first when present.
//
// Config file locations (priority order):
//  1. $SENTINEL_CONFIG
//  2. ./sentinel.yaml
//  3. /etc/sentinel/config.yaml
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full sentinel configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Router   RouterConfig   `yaml:"router"`
	Scan     ScanConfig     `yaml:"scan"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig controls snapshot persistence
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RouterConfig describes the router probe target
type RouterConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	KeyPath    string `yaml:"key_path"`
	PingTarget string `yaml:"ping_target"`
}

// ScanConfig controls discovery and wifi scanning
type ScanConfig struct {
	Targets       []string `yaml:"targets"`
	WifiInterface string   `yaml:"wifi_interface"`
	NmapEnabled   *bool    `yaml:"nmap_enabled"`
}

// AnalysisConfig holds the analysis engine tunables
type AnalysisConfig struct {
	Interval           Duration `yaml:"interval"`
	HistoryCapacity    int      `yaml:"history_capacity"`
	OfflineThreshold   Duration `yaml:"offline_threshold"`
	PacketLossWarning  float64  `yaml:"packet_loss_warning"`
	PacketLossCritical float64  `yaml:"packet_loss_critical"`
	LatencyWarningMs   float64  `yaml:"latency_warning_ms"`
	LatencyCriticalMs  float64  `yaml:"latency_critical_ms"`
	WifiClientLimit    int      `yaml:"wifi_client_limit"`
	SuppressRepeats    bool     `yaml:"suppress_repeats"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML parses duration strings like "5m" or "300s"
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load finds and loads the config file, or returns defaults if none
// found, then applies environment overrides.
func Load() (*Config, string, error) {
	// Missing .env is the normal case
	_ = godotenv.Load()

	path := FindConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	return &cfg, path, nil
}

// FindConfigPath probes the known config locations
func FindConfigPath() string {
	if env := os.Getenv("SENTINEL_CONFIG"); env != "" {
		return env
	}
	for _, candidate := range []string{"./sentinel.yaml", "/etc/sentinel/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "./sentinel.db"},
		Router:   RouterConfig{Port: 22, User: "root", PingTarget: "1.1.1.1"},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./sentinel.db"
	}
	if c.Router.Port == 0 {
		c.Router.Port = 22
	}
	if c.Router.User == "" {
		c.Router.User = "root"
	}
	if c.Router.PingTarget == "" {
		c.Router.PingTarget = "1.1.1.1"
	}
	if c.Scan.WifiInterface == "" {
		c.Scan.WifiInterface = "wlan0"
	}

	a := &c.Analysis
	if a.Interval <= 0 {
		a.Interval = Duration(5 * time.Minute)
	}
	if a.HistoryCapacity <= 0 {
		a.HistoryCapacity = 288
	}
	if a.OfflineThreshold <= 0 {
		a.OfflineThreshold = Duration(5 * time.Minute)
	}
	if a.PacketLossWarning <= 0 {
		a.PacketLossWarning = 1.0
	}
	if a.PacketLossCritical <= 0 {
		a.PacketLossCritical = 5.0
	}
	if a.LatencyWarningMs <= 0 {
		a.LatencyWarningMs = 100
	}
	if a.LatencyCriticalMs <= 0 {
		a.LatencyCriticalMs = 500
	}
	if a.WifiClientLimit <= 0 {
		a.WifiClientLimit = 100
	}
}

// applyEnvOverrides lets credentials and the listen address come from
// the environment instead of the config file
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SENTINEL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SENTINEL_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SENTINEL_ROUTER_HOST"); v != "" {
		c.Router.Host = v
	}
	if v := os.Getenv("SENTINEL_ROUTER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port < 65536 {
			c.Router.Port = port
		} else {
			log.Printf("Config: ignoring invalid SENTINEL_ROUTER_PORT %q", v)
		}
	}
	if v := os.Getenv("SENTINEL_ROUTER_USER"); v != "" {
		c.Router.User = v
	}
	if v := os.Getenv("SENTINEL_ROUTER_PASSWORD"); v != "" {
		c.Router.Password = v
	}
	if v := os.Getenv("SENTINEL_ROUTER_KEY"); v != "" {
		c.Router.KeyPath = v
	}
}

// NmapEnabled reports whether nmap discovery should run (default true)
func (c *Config) NmapEnabled() bool {
	if c.Scan.NmapEnabled == nil {
		return true
	}
	return *c.Scan.NmapEnabled
}
