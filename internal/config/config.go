package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// MonitorConfig holds the settings of the sampling engine.
type MonitorConfig struct {
	Interval          string   `yaml:"interval" default:"5s"`
	MaxHistory        int      `yaml:"max_history" default:"1000"`
	AttackLogPath     string   `yaml:"attack_log" default:"logs/attack_simulator.log"`
	HistoryFile       string   `yaml:"history_file" default:"data/metrics_history.json"`
	ProcRoot          string   `yaml:"proc_root" default:"/proc"`
	ConnectionSources []string `yaml:"connection_sources" default:"[\"procfs\",\"ss\",\"netstat\"]"`
	AnomalyThreshold  float64  `yaml:"anomaly_threshold" default:"0.5"`
	WatchAttackLog    bool     `yaml:"watch_attack_log" default:"true"`
}

// LogConfig controls the process-wide logger.
type LogConfig struct {
	Level string `yaml:"level" default:"info"`
	// Format is "text" or "json".
	Format string `yaml:"format" default:"text"`
	// FileDir enables per-level log files in this directory when set.
	FileDir string `yaml:"file_dir"`
}

// ClickHouseConfig holds the connection settings for a ClickHouse sink.
type ClickHouseConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"9000"`
	Database string `yaml:"database" default:"default"`
	Username string `yaml:"username" default:"default"`
	Password string `yaml:"password"`
}

// NATSConfig holds the connection settings for the snapshot stream.
type NATSConfig struct {
	URL     string `yaml:"url" default:"nats://127.0.0.1:4222"`
	Subject string `yaml:"subject" default:"netwatch.snapshots"`
}

// JSONConfig holds the settings of the history file sink.
type JSONConfig struct {
	Path string `yaml:"path"`
}

// WriterDef defines one snapshot sink.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Interval   string           `yaml:"interval" default:"30s"`
	JSON       JSONConfig       `yaml:"json"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// AlerterConfig holds the alerting rules evaluated after every sample.
type AlerterConfig struct {
	Enabled            bool    `yaml:"enabled"`
	ScoreThreshold     float64 `yaml:"score_threshold" default:"0.5"`
	NotifyOnAttack     bool    `yaml:"notify_on_attack" default:"true"`
	NotifyOnVulnerable bool    `yaml:"notify_on_vulnerable" default:"true"`
	Cooldown           string  `yaml:"cooldown" default:"5m"`
	AttackHistorySize  int     `yaml:"attack_history_size" default:"100"`
}

// SMTPConfig holds the settings for the e-mail notifier.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"587"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// APIConfig holds the settings of the HTTP API server.
type APIConfig struct {
	Enabled    bool   `yaml:"enabled" default:"true"`
	ListenAddr string `yaml:"listen_addr" default:":8080"`
}

// HealthConfig holds the settings of the gRPC health server.
type HealthConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr" default:":50051"`
}

// ClientInfoConfig controls how the public address of the host is discovered.
type ClientInfoConfig struct {
	PublicIPURLs []string `yaml:"public_ip_urls" default:"[\"https://api.ipify.org?format=json\",\"https://ifconfig.me/ip\"]"`
	DNSResolver  string   `yaml:"dns_resolver" default:"resolver1.opendns.com:53"`
	Timeout      string   `yaml:"timeout" default:"5s"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Monitor    MonitorConfig    `yaml:"monitor"`
	Log        LogConfig        `yaml:"log"`
	Writers    []WriterDef      `yaml:"writers"`
	Alerter    AlerterConfig    `yaml:"alerter"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	API        APIConfig        `yaml:"api"`
	Health     HealthConfig     `yaml:"health"`
	ClientInfo ClientInfoConfig `yaml:"client_info"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		// the defaults are static; a failure here is a programming error
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return &cfg
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
// Values missing from the file keep their defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads the file when it exists and falls back to Default otherwise.
func LoadOrDefault(filePath string) (*Config, error) {
	if filePath == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadConfig(filePath)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	// writer entries are created by the decoder, so their defaults are applied afterwards
	for i := range cfg.Writers {
		if err := defaults.Set(&cfg.Writers[i]); err != nil {
			return nil, fmt.Errorf("failed to apply writer defaults: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be fixed up by defaults.
func (c *Config) Validate() error {
	if _, err := c.Monitor.SampleInterval(); err != nil {
		return err
	}
	if c.Monitor.MaxHistory <= 0 {
		return fmt.Errorf("monitor.max_history must be positive, got %d", c.Monitor.MaxHistory)
	}
	if c.Monitor.AnomalyThreshold < 0 || c.Monitor.AnomalyThreshold > 1 {
		return fmt.Errorf("monitor.anomaly_threshold must be within [0,1], got %v", c.Monitor.AnomalyThreshold)
	}
	for _, w := range c.Writers {
		if !w.Enabled {
			continue
		}
		if _, err := parsePositive(w.Interval, "writer interval"); err != nil {
			return fmt.Errorf("writer '%s': %w", w.Type, err)
		}
	}
	if c.Alerter.Enabled {
		if _, err := c.Alerter.CooldownDuration(); err != nil {
			return err
		}
	}
	return nil
}

// SampleInterval returns the parsed sampling interval.
func (m MonitorConfig) SampleInterval() (time.Duration, error) {
	return parsePositive(m.Interval, "monitor.interval")
}

// FlushInterval returns the parsed flush interval of a writer.
func (w WriterDef) FlushInterval() (time.Duration, error) {
	return parsePositive(w.Interval, "writer interval")
}

// CooldownDuration returns the parsed alert cooldown; zero disables it.
func (a AlerterConfig) CooldownDuration() (time.Duration, error) {
	if a.Cooldown == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Cooldown)
	if err != nil {
		return 0, fmt.Errorf("invalid alerter cooldown: %w", err)
	}
	return d, nil
}

// LookupTimeout returns the parsed client info timeout.
func (c ClientInfoConfig) LookupTimeout() (time.Duration, error) {
	return parsePositive(c.Timeout, "client_info.timeout")
}

// EnabledWriter returns the first enabled writer of the given type.
func (c *Config) EnabledWriter(writerType string) (*WriterDef, bool) {
	for i := range c.Writers {
		if c.Writers[i].Enabled && c.Writers[i].Type == writerType {
			return &c.Writers[i], true
		}
	}
	return nil, false
}

func parsePositive(value, name string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", name)
	}
	return d, nil
}

// NATSSettings returns the settings of the enabled NATS writer, or the
// defaults when none is enabled.
func (c *Config) NATSSettings() NATSConfig {
	if def, ok := c.EnabledWriter("nats"); ok {
		return def.NATS
	}
	var def WriterDef
	if err := defaults.Set(&def); err != nil {
		panic(fmt.Sprintf("invalid writer defaults: %v", err))
	}
	return def.NATS
}
