package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	rgerrors "github.com/lxopi/repgo/pkg/common/errors"
	"github.com/lxopi/repgo/pkg/dispatch"
	"github.com/lxopi/repgo/pkg/httpclient"
	"github.com/lxopi/repgo/pkg/logging"
)

// File is the on-disk configuration for repgo components. Durations are
// strings in time.ParseDuration syntax ("30s", "5m").
type File struct {
	Dispatch DispatchConfig `yaml:"dispatch" json:"dispatch"`
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// DispatchConfig configures the bounded dispatcher.
type DispatchConfig struct {
	Concurrency    int    `yaml:"concurrency" json:"concurrency"`
	MaxRetries     int    `yaml:"max_retries" json:"max_retries"`
	AttemptTimeout string `yaml:"attempt_timeout" json:"attempt_timeout"`
	BackoffInitial string `yaml:"backoff_initial" json:"backoff_initial"`
	BackoffMax     string `yaml:"backoff_max" json:"backoff_max"`
	Name           string `yaml:"name" json:"name"`
}

// HTTPConfig configures the retrying HTTP client.
type HTTPConfig struct {
	MaxRetries     int               `yaml:"max_retries" json:"max_retries"`
	Timeout        string            `yaml:"timeout" json:"timeout"`
	BackoffInitial string            `yaml:"backoff_initial" json:"backoff_initial"`
	BackoffMax     string            `yaml:"backoff_max" json:"backoff_max"`
	UserAgent      string            `yaml:"user_agent" json:"user_agent"`
	Headers        map[string]string `yaml:"headers" json:"headers"`
	Name           string            `yaml:"name" json:"name"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	ForceColors bool   `yaml:"force_colors" json:"force_colors"`
}

// LoadFile reads a configuration file, choosing the decoder by extension:
// .yaml and .yml parse as YAML, .json as JSON.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rgerrors.NewOperationError("config", "load", err).
			WithContext("path: " + path)
	}

	var file File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, rgerrors.NewOperationError("config", "parse", err).
				WithContext("path: " + path)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, rgerrors.NewOperationError("config", "parse", err).
				WithContext("path: " + path)
		}
	default:
		return nil, rgerrors.NewValidationError("config", "path", path, "unsupported extension").
			WithHint("use .yaml, .yml or .json")
	}

	return &file, nil
}

// ToDispatch converts the dispatch section into a dispatch.Config.
// Validation happens when the dispatcher is constructed.
func (f *File) ToDispatch() (dispatch.Config, error) {
	cfg := dispatch.Config{
		Concurrency: f.Dispatch.Concurrency,
		MaxRetries:  f.Dispatch.MaxRetries,
		Name:        f.Dispatch.Name,
	}

	timeout, err := parseDuration("dispatch", "attempt_timeout", f.Dispatch.AttemptTimeout)
	if err != nil {
		return cfg, err
	}
	cfg.AttemptTimeout = timeout

	backoff, err := backoffFrom("dispatch", f.Dispatch.BackoffInitial, f.Dispatch.BackoffMax)
	if err != nil {
		return cfg, err
	}
	cfg.Backoff = backoff

	return cfg, nil
}

// ToHTTPClient converts the http section into an httpclient.Config.
func (f *File) ToHTTPClient() (httpclient.Config, error) {
	cfg := httpclient.Config{
		MaxRetries: f.HTTP.MaxRetries,
		UserAgent:  f.HTTP.UserAgent,
		Headers:    f.HTTP.Headers,
		Name:       f.HTTP.Name,
	}

	timeout, err := parseDuration("http", "timeout", f.HTTP.Timeout)
	if err != nil {
		return cfg, err
	}
	cfg.Timeout = timeout

	backoff, err := backoffFrom("http", f.HTTP.BackoffInitial, f.HTTP.BackoffMax)
	if err != nil {
		return cfg, err
	}
	cfg.Backoff = backoff

	return cfg, nil
}

// ToLogging converts the logging section into a logging.Config.
func (f *File) ToLogging() logging.Config {
	return logging.Config{
		Level:       f.Logging.Level,
		ForceColors: f.Logging.ForceColors,
	}
}

func parseDuration(module, field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, rgerrors.NewValidationError(module, field, raw, "invalid duration").
			WithHint(`use time.ParseDuration syntax, like "30s" or "5m"`)
	}
	return d, nil
}

func backoffFrom(module, initial, max string) (dispatch.BackoffFunc, error) {
	initialD, err := parseDuration(module, "backoff_initial", initial)
	if err != nil {
		return nil, err
	}
	maxD, err := parseDuration(module, "backoff_max", max)
	if err != nil {
		return nil, err
	}

	switch {
	case initialD == 0:
		return nil, nil
	case maxD == 0:
		return dispatch.ConstantBackoff(initialD), nil
	default:
		return dispatch.ExponentialBackoff(initialD, maxD), nil
	}
}
