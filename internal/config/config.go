package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the kiosk configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Endpoint EndpointConfig `yaml:"endpoint"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Kiosk    KioskConfig    `yaml:"kiosk"`

	// ConfigPath is the path to the config file (not serialized)
	ConfigPath string `yaml:"-"`
}

// ServerConfig represents the local server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// EndpointConfig is the spreadsheet web app that records every action
type EndpointConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RefreshConfig controls the authoritative open-jobs fetch
type RefreshConfig struct {
	// Schedule is a cron spec, e.g. "@every 30s" or "*/1 * * * *"
	Schedule string `yaml:"schedule"`
	Enabled  bool   `yaml:"enabled"`
}

// KioskConfig holds operator-facing settings
type KioskConfig struct {
	Name             string        `yaml:"name,omitempty"`
	OtherReasonLabel string        `yaml:"other_reason_label"`
	PauseReasons     []PauseReason `yaml:"pause_reasons"`
	LogSize          int           `yaml:"log_size"`
	HistorySize      int           `yaml:"history_size"`
}

// PauseReason maps a reason shown in the pause dialog to the pause type
// recorded against the job
type PauseReason struct {
	Label string `yaml:"label" json:"label"`
	Type  string `yaml:"type" json:"type"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Endpoint: EndpointConfig{
			Timeout: 30 * time.Second,
		},
		Refresh: RefreshConfig{
			Schedule: "@every 30s",
			Enabled:  true,
		},
		Kiosk: KioskConfig{
			OtherReasonLabel: "อื่นๆ โปรดระบุ",
			PauseReasons: []PauseReason{
				{Label: "พักเบรก", Type: "PAUSE_BREAK"},
				{Label: "เครื่องจักรเสีย", Type: "PAUSE_MACHINE"},
				{Label: "รอวัตถุดิบ", Type: "PAUSE_MATERIAL"},
				{Label: "รอ QC", Type: "PAUSE_QC"},
			},
			LogSize:     500,
			HistorySize: 50,
		},
	}
}

// Load loads configuration from the config file
func Load() (*Config, error) {
	// Try to find config file in common locations
	configPaths := []string{
		"config.yaml",
		"configs/config.yaml",
		"/etc/kiosk/config.yaml",
	}

	var err error
	for _, path := range configPaths {
		var cfg *Config
		cfg, err = LoadFile(path)
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return nil, err
}

// LoadFile loads configuration from a single file on top of the defaults
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.ConfigPath = path
	return cfg, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// PauseType returns the pause type for a reason label. Reasons missing from
// the table are recorded as a plain PAUSE.
func (k KioskConfig) PauseType(label string) string {
	for _, r := range k.PauseReasons {
		if r.Label == label {
			return r.Type
		}
	}
	return "PAUSE"
}
