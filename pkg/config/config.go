// Package config loads harness settings from yaml, toml or json files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Krajiyah/ble-sensors/pkg/util"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the BLE provider, the sensor facade and the harness.
// Fields missing from a file keep their Default() value.
type Config struct {
	Adapter         string   `json:"adapter" yaml:"adapter" toml:"adapter"`
	DialTimeout     string   `json:"dial_timeout" yaml:"dial_timeout" toml:"dial_timeout"`
	AllowDuplicates bool     `json:"allow_duplicates" yaml:"allow_duplicates" toml:"allow_duplicates"`
	ReportUnknown   bool     `json:"report_unknown" yaml:"report_unknown" toml:"report_unknown"`
	QueueSize       int      `json:"queue_size" yaml:"queue_size" toml:"queue_size"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	MetricsAddr     string   `json:"metrics_addr" yaml:"metrics_addr" toml:"metrics_addr"`
	AutoConnect     []string `json:"auto_connect" yaml:"auto_connect" toml:"auto_connect"`
}

// Log formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

func Default() Config {
	return Config{
		Adapter:     "hci0",
		DialTimeout: "10s",
		QueueSize:   256,
		LogLevel:    "info",
		LogFormat:   FormatConsole,
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "ReadFile issue")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, errors.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "could not parse %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks every field that has a restricted form
func (c Config) Validate() error {
	if c.Adapter == "" {
		return errors.New("adapter must be set")
	}
	if d, err := time.ParseDuration(c.DialTimeout); err != nil || d <= 0 {
		return errors.Errorf("invalid dial_timeout %q", c.DialTimeout)
	}
	if c.QueueSize <= 0 {
		return errors.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log_level")
	}
	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		return errors.Errorf("invalid log_format %q", c.LogFormat)
	}
	return nil
}

// DialTimeoutDuration returns DialTimeout parsed, falling back to the default
func (c Config) DialTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.DialTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(Default().DialTimeout)
	}
	return d
}

// ShouldAutoConnect reports whether addr is listed in auto_connect
func (c Config) ShouldAutoConnect(addr string) bool {
	for _, a := range c.AutoConnect {
		if util.AddrEqualAddr(a, addr) {
			return true
		}
	}
	return false
}
