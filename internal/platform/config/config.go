// Package config loads runtime settings from an optional YAML file with
// DOCSUBMIT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Intake configures the submission client.
type Intake struct {
	BaseURL  string        `yaml:"baseURL" env:"BASE_URL"`
	Endpoint string        `yaml:"endpoint" env:"ENDPOINT"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Token    string        `yaml:"token" env:"TOKEN"`
	Contract string        `yaml:"contract" env:"CONTRACT"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Metrics configures the Prometheus listener. An empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// Tracing configures OTLP export. An empty Endpoint disables it.
type Tracing struct {
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	Service  string `yaml:"service" env:"SERVICE"`
}

// Form configures the catalogue and validation thresholds.
type Form struct {
	ConfigPath             string `yaml:"configPath" env:"CONFIG_PATH"`
	MinimumAge             int    `yaml:"minimumAge" env:"MINIMUM_AGE"`
	MinimumDocuments       int    `yaml:"minimumDocuments" env:"MINIMUM_DOCUMENTS"`
	StrictPermanentAddress bool   `yaml:"strictPermanentAddress" env:"STRICT_PERMANENT_ADDRESS"`
}

// Stub configures the local intake receiver.
type Stub struct {
	Addr         string `yaml:"addr" env:"ADDR"`
	ForcedStatus int    `yaml:"forcedStatus" env:"FORCED_STATUS"`
}

// Config is the full runtime configuration.
type Config struct {
	Intake  Intake  `yaml:"intake" envPrefix:"INTAKE_"`
	Log     Log     `yaml:"log" envPrefix:"LOG_"`
	Metrics Metrics `yaml:"metrics" envPrefix:"METRICS_"`
	Tracing Tracing `yaml:"tracing" envPrefix:"TRACING_"`
	Form    Form    `yaml:"form" envPrefix:"FORM_"`
	Stub    Stub    `yaml:"stub" envPrefix:"STUB_"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Intake: Intake{
			BaseURL:  "http://localhost:3000",
			Endpoint: "/api/v1/submit-form",
			Timeout:  30 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Tracing: Tracing{
			Service: "docsubmit",
		},
		Form: Form{
			MinimumAge:       18,
			MinimumDocuments: 2,
		},
		Stub: Stub{
			Addr: "127.0.0.1:3000",
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.Intake.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("intake.baseURL %q must be an absolute http(s) url", c.Intake.BaseURL))
	}
	if !strings.HasPrefix(c.Intake.Endpoint, "/") {
		problems = append(problems, fmt.Sprintf("intake.endpoint %q must start with /", c.Intake.Endpoint))
	}
	if c.Intake.Timeout <= 0 {
		problems = append(problems, "intake.timeout must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if c.Form.MinimumAge < 0 {
		problems = append(problems, "form.minimumAge must not be negative")
	}
	if c.Form.MinimumDocuments < 0 {
		problems = append(problems, "form.minimumDocuments must not be negative")
	}
	if s := c.Stub.ForcedStatus; s != 0 && (s < 100 || s > 599) {
		problems = append(problems, fmt.Sprintf("stub.forcedStatus %d is not an http status", s))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("config: " + strings.Join(problems, "; "))
}
