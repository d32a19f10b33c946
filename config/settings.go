// Package config provides configuration structures for the similarity service.
// It defines the weight table, server settings and the loader that merges an
// optional YAML file with environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// Default values for non-secret configuration.
const (
	DefaultPort              = 8080
	DefaultEnv               = "development"
	DefaultDataDir           = "./similarity_data"
	DefaultMaxWorkers        = 4
	DefaultParallelThreshold = 256
	DefaultMaxRequestBytes   = 10 << 20
	DefaultAuditEnabled      = true
	DefaultTracingSampleRate = 0.1
	DefaultTracingService    = "trademark-similarity"
)

// Configuration validation errors.
var (
	ErrInvalidPort              = errors.New("PORT must be a valid integer")
	ErrInvalidInteger           = errors.New("value must be a valid integer")
	ErrInvalidFloat             = errors.New("value must be a valid float")
	ErrInvalidMaxWorkers        = errors.New("max_workers must be at least 1")
	ErrInvalidParallelThreshold = errors.New("parallel_threshold must be at least 1")
	ErrInvalidMaxRequestBytes   = errors.New("max_request_bytes must be positive")
	ErrInvalidSampleRate        = errors.New("tracing.sample_rate must be between 0 and 1")
)

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	ServiceName  string  `koanf:"service_name"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate"`
	Insecure     bool    `koanf:"insecure"`
}

// Config holds all configuration values for the similarity service.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Storage for job results and the audit trail
	DataDir string `koanf:"data_dir"`

	// Scoring
	MaxWorkers        int         `koanf:"max_workers"`        // Concurrent batch jobs
	ParallelThreshold int         `koanf:"parallel_threshold"` // Candidate count above which scoring fans out
	MaxRequestBytes   int64       `koanf:"max_request_bytes"`
	Weights           WeightTable `koanf:"weights"`

	// WeightOverrides lists the signals whose weight came from the config file.
	WeightOverrides []model.SignalName `koanf:"-"`

	AuditEnabled bool          `koanf:"audit_enabled"`
	Tracing      TracingConfig `koanf:"tracing"`
}

// Default returns a configuration with every setting at its default.
func Default() *Config {
	return &Config{
		Port:              DefaultPort,
		Env:               DefaultEnv,
		DataDir:           DefaultDataDir,
		MaxWorkers:        DefaultMaxWorkers,
		ParallelThreshold: DefaultParallelThreshold,
		MaxRequestBytes:   DefaultMaxRequestBytes,
		Weights:           DefaultWeights(),
		AuditEnabled:      DefaultAuditEnabled,
		Tracing: TracingConfig{
			ServiceName: DefaultTracingService,
			SampleRate:  DefaultTracingSampleRate,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables take precedence over file values. Weights are only read
// from the file.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	cfg := Default()

	port, err := envIntOrDefault([]string{"SIMILARITY_PORT", "PORT"}, k, "port", DefaultPort)
	if err != nil {
		loadErrs = append(loadErrs, fmt.Errorf("%w: %v", ErrInvalidPort, err))
	}
	cfg.Port = port

	cfg.Env = envOrDefault([]string{"SIMILARITY_ENV", "ENV"}, k.String("env"), DefaultEnv)
	cfg.DataDir = envOrDefault([]string{"SIMILARITY_DATA_DIR"}, k.String("data_dir"), DefaultDataDir)

	if cfg.MaxWorkers, err = envIntOrDefault([]string{"SIMILARITY_MAX_WORKERS"}, k, "max_workers", DefaultMaxWorkers); err != nil {
		loadErrs = append(loadErrs, err)
	}
	if cfg.ParallelThreshold, err = envIntOrDefault([]string{"SIMILARITY_PARALLEL_THRESHOLD"}, k, "parallel_threshold", DefaultParallelThreshold); err != nil {
		loadErrs = append(loadErrs, err)
	}
	maxBytes, err := envIntOrDefault([]string{"SIMILARITY_MAX_REQUEST_BYTES"}, k, "max_request_bytes", DefaultMaxRequestBytes)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	cfg.MaxRequestBytes = int64(maxBytes)

	cfg.AuditEnabled = envBoolOrDefault("SIMILARITY_AUDIT_ENABLED", k, "audit_enabled", DefaultAuditEnabled)

	cfg.Tracing.Enabled = envBoolOrDefault("TRACING_ENABLED", k, "tracing.enabled", false)
	cfg.Tracing.Insecure = envBoolOrDefault("TRACING_INSECURE", k, "tracing.insecure", false)
	cfg.Tracing.ServiceName = envOrDefault([]string{"TRACING_SERVICE_NAME"}, k.String("tracing.service_name"), DefaultTracingService)
	cfg.Tracing.OTLPEndpoint = envOrDefault([]string{"TRACING_OTLP_ENDPOINT"}, k.String("tracing.otlp_endpoint"), "")
	if cfg.Tracing.SampleRate, err = envFloatOrDefault("TRACING_SAMPLE_RATE", k, "tracing.sample_rate", DefaultTracingSampleRate); err != nil {
		loadErrs = append(loadErrs, err)
	}

	var weightErrs []error
	cfg.Weights, cfg.WeightOverrides, weightErrs = loadWeights(k)

	errs := append(loadErrs, cfg.validateSettings()...)
	// Rejected entries keep their defaults, so the table is only checked when every entry parsed.
	if len(weightErrs) > 0 {
		return cfg, append(errs, weightErrs...)
	}
	if err := cfg.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}
	return cfg, errs
}

// loadWeights overlays file-provided weights on the defaults. An explicit zero
// is honored so a signal can be switched off entirely. Unknown signal names and
// values that are not numbers are reported as configuration errors.
func loadWeights(k *koanf.Koanf) (WeightTable, []model.SignalName, []error) {
	weights := DefaultWeights()
	raw := k.Get("weights")
	if raw == nil {
		return weights, nil, nil
	}

	var (
		overrides []model.SignalName
		errs      []error
	)
	known := make(map[string]bool, len(model.SignalOrder))
	for _, name := range model.SignalOrder {
		known[string(name)] = true
		key := "weights." + string(name)
		if !k.Exists(key) {
			continue
		}
		value, err := weightValue(key, k.Get(key))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		weights.Set(name, value)
		overrides = append(overrides, name)
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return weights, overrides, append(errs, apperrors.NewConfigurationError("weights", "must be a mapping of signal name to weight"))
	}
	unknown := make([]string, 0)
	for name := range section {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, apperrors.NewConfigurationError("weights."+name, "unknown signal"))
	}

	return weights, overrides, errs
}

// weightValue converts a parsed YAML scalar into a weight.
func weightValue(key string, raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, nil
		}
	}
	return 0, apperrors.NewConfigurationError(key, fmt.Sprintf("weight must be a number, got %v", raw))
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() []error {
	errs := c.validateSettings()
	if err := c.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (c *Config) validateSettings() []error {
	var errs []error

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %d is out of range", ErrInvalidPort, c.Port))
	}
	if c.MaxWorkers < 1 {
		errs = append(errs, ErrInvalidMaxWorkers)
	}
	if c.ParallelThreshold < 1 {
		errs = append(errs, ErrInvalidParallelThreshold)
	}
	if c.MaxRequestBytes <= 0 {
		errs = append(errs, ErrInvalidMaxRequestBytes)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, ErrInvalidSampleRate)
	}

	return errs
}

// LogSummary logs the effective configuration.
func (c *Config) LogSummary(logger *slog.Logger) {
	logger.Info("configuration loaded",
		"port", c.Port,
		"env", c.Env,
		"data_dir", c.DataDir,
		"max_workers", c.MaxWorkers,
		"parallel_threshold", c.ParallelThreshold,
		"max_request_bytes", c.MaxRequestBytes,
		"audit_enabled", c.AuditEnabled,
		"tracing_enabled", c.Tracing.Enabled,
		"weights_sum", c.Weights.Sum(),
	)
	for _, name := range c.WeightOverrides {
		logger.Info("weight override loaded",
			"signal", name,
			"default", DefaultWeights().Get(name),
			"override", c.Weights.Get(name),
		)
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// envOrDefault returns the first non-empty environment variable, otherwise the koanf value, or default.
func envOrDefault(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// envIntOrDefault tries the environment variables in order, then the koanf key, then the default.
// Returns an error if an environment variable is set but cannot be parsed as an integer.
func envIntOrDefault(envKeys []string, k *koanf.Koanf, koanfKey string, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return defaultVal, fmt.Errorf("%s: %w", key, ErrInvalidInteger)
			}
			return i, nil
		}
	}
	if k.Exists(koanfKey) {
		return k.Int(koanfKey), nil
	}
	return defaultVal, nil
}

// envFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
func envFloatOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidFloat)
		}
		return f, nil
	}
	if k.Exists(koanfKey) {
		return k.Float64(koanfKey), nil
	}
	return defaultVal, nil
}

// envBoolOrDefault accepts true/1/yes/on and false/0/no/off; anything else keeps the file or default value.
func envBoolOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	result := defaultVal
	if k.Exists(koanfKey) {
		result = k.Bool(koanfKey)
	}
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			result = true
		case "false", "0", "no", "off":
			result = false
		}
	}
	return result
}
