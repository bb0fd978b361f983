// Package config loads and validates the settings for a scan run from flags,
// PORTSCAN_* environment variables and an optional config file.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "PORTSCAN"

	DefaultOutput = "port_scan_results.xlsx"
)

type Config struct {
	Host      string `mapstructure:"host" validate:"required"`
	StartPort int    `mapstructure:"start_port" validate:"min=0,max=65535"`
	EndPort   int    `mapstructure:"end_port" validate:"min=0,max=65535,gtefield=StartPort"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
	GrabTimeout    time.Duration `mapstructure:"grab_timeout" validate:"gt=0"`
	Workers        int           `mapstructure:"workers" validate:"min=1"`
	ProbePayload   string        `mapstructure:"probe_payload" validate:"required"`
	BannerSize     int           `mapstructure:"banner_size" validate:"min=1,max=65536"`
	AnnotateHost   bool          `mapstructure:"annotate_host"`
	ServicesFile   string        `mapstructure:"services_file" validate:"omitempty,file"`

	Output      string `mapstructure:"output"`
	Format      string `mapstructure:"format" validate:"omitempty,oneof=xlsx csv json table"`
	MetricsFile string `mapstructure:"metrics_file"`

	LogFile   string `mapstructure:"log_file"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	Verbose   bool   `mapstructure:"verbose"`
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("connect_timeout", time.Second)
	v.SetDefault("grab_timeout", 2*time.Second)
	v.SetDefault("workers", 1)
	v.SetDefault("probe_payload", "WhoAreYou\r\n")
	v.SetDefault("banner_size", 100)
	v.SetDefault("annotate_host", false)
	v.SetDefault("services_file", "")
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("format", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_file", "port_scan.log")
	v.SetDefault("log_format", "text")
	v.SetDefault("verbose", false)
}

// New returns a viper instance with defaults and environment binding set up.
// When file is not empty it is read as the config file.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Payload returns the probe payload with Go escape sequences such as \r\n
// interpreted, so it can be given on the command line.
func (c Config) Payload() []byte {
	if unquoted, err := strconv.Unquote(`"` + c.ProbePayload + `"`); err == nil {
		return []byte(unquoted)
	}
	return []byte(c.ProbePayload)
}

// OutputFormat is the explicit format, or the one implied by the output
// file's extension.
func (c Config) OutputFormat() string {
	if c.Format != "" {
		return c.Format
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(c.Output), ".")) {
	case "csv":
		return "csv"
	case "json":
		return "json"
	case "":
		if c.Output == "" || c.Output == "-" {
			return "table"
		}
	}
	return "xlsx"
}
