package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/ledsign/internal/logging"
)

// Recognized configuration keys.
const (
	KeyMQTTHost     = "MQTT_HOST"
	KeyDeviceName   = "DEVICE_NAME"
	KeyDeviceID     = "DEVICE_ID"
	KeyMQTTClientID = "MQTT_CLIENT_ID"
	KeyMQTTUsername = "MQTT_USERNAME"
	KeyMQTTPassword = "MQTT_PASSWORD"
	KeyTimeout      = "TIMEOUT"
	KeyLogLevel     = "LOG_LEVEL"
	KeyLogFormat    = "LOG_FORMAT"
)

const (
	defaultMQTTHost   = "mqtt://localhost:1883"
	defaultDeviceName = "led-sign"
	defaultDeviceID   = "2FE598"
	defaultTimeout    = 10 * time.Second
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"

	// DefaultEnvFileName is looked up next to the executable when no path is given.
	DefaultEnvFileName = ".env"
)

// Config is the flat, read-only setting mapping resolved at startup.
// Precedence: CLI flags > environment file > YAML config > Defaults
type Config struct {
	values   map[string]string
	timeout  time.Duration
	warnings []error
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	MQTTHost   string            `yaml:"mqtt_host"`
	DeviceName string            `yaml:"device_name"`
	DeviceID   string            `yaml:"device_id"`
	ClientID   string            `yaml:"client_id"`
	Username   string            `yaml:"username"`
	Password   string            `yaml:"password"`
	Timeout    string            `yaml:"timeout"`
	LogLevel   string            `yaml:"log_level"`
	LogFormat  string            `yaml:"log_format"`
	Settings   map[string]string `yaml:"settings"`
}

// Overrides holds command-line flag overrides.
type Overrides struct {
	ConfigFile string
	// EnvFile replaces the default .env path next to the executable.
	EnvFile string

	MQTTHost   *string
	DeviceName *string
	DeviceID   *string
	ClientID   *string
	Username   *string
	Password   *string
	Timeout    *time.Duration
	LogLevel   *string
	LogFormat  *string
}

// Load resolves configuration with precedence:
// CLI flags > environment file > YAML config > Defaults
//
// A missing or unreadable environment file is not an error; it is reported
// through Config.Warnings and defaults stay in effect.
func Load(overrides *Overrides) (Config, error) {
	if overrides == nil {
		overrides = &Overrides{}
	}

	values := defaultValues()
	var warnings []error

	if overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(values, yamlCfg)
	}

	envPath := overrides.EnvFile
	if envPath == "" {
		envPath = DefaultEnvFile()
	}
	entries, err := ReadEnvFile(envPath)
	if err != nil {
		warnings = append(warnings, err)
	}
	maps.Copy(values, entries)

	applyCLIOverrides(values, overrides)

	timeout, err := validateConfig(values)
	if err != nil {
		return Config{}, err
	}

	return Config{
		values:   values,
		timeout:  timeout,
		warnings: warnings,
	}, nil
}

// DefaultEnvFile returns the .env path colocated with the running executable.
func DefaultEnvFile() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultEnvFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DefaultEnvFileName)
}

// Get returns the raw value stored under key.
func (c Config) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Values returns a copy of every resolved setting, including unrecognized keys.
func (c Config) Values() map[string]string {
	return maps.Clone(c.values)
}

// Warnings lists non-fatal problems encountered while loading.
func (c Config) Warnings() []error {
	return c.warnings
}

func (c Config) MQTTHost() string   { return c.values[KeyMQTTHost] }
func (c Config) DeviceName() string { return c.values[KeyDeviceName] }
func (c Config) DeviceID() string   { return c.values[KeyDeviceID] }
func (c Config) ClientID() string   { return c.values[KeyMQTTClientID] }
func (c Config) Username() string   { return c.values[KeyMQTTUsername] }
func (c Config) Password() string   { return c.values[KeyMQTTPassword] }
func (c Config) LogLevel() string   { return c.values[KeyLogLevel] }
func (c Config) LogFormat() string  { return c.values[KeyLogFormat] }

// Timeout is the end-to-end bound for connecting and publishing.
func (c Config) Timeout() time.Duration {
	if c.timeout <= 0 {
		return defaultTimeout
	}
	return c.timeout
}

// New builds a Config from explicit values layered over the defaults.
// It is intended for tests and embedding callers that skip file loading.
func New(values map[string]string) (Config, error) {
	merged := defaultValues()
	maps.Copy(merged, values)
	timeout, err := validateConfig(merged)
	if err != nil {
		return Config{}, err
	}
	return Config{values: merged, timeout: timeout}, nil
}

// defaultValues returns the built-in settings.
func defaultValues() map[string]string {
	return map[string]string{
		KeyMQTTHost:   defaultMQTTHost,
		KeyDeviceName: defaultDeviceName,
		KeyDeviceID:   defaultDeviceID,
		KeyTimeout:    defaultTimeout.String(),
		KeyLogLevel:   defaultLogLevel,
		KeyLogFormat:  defaultLogFormat,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the value map.
// Typed keys win over the same key in the free-form settings section.
func applyYAMLConfig(values map[string]string, yamlCfg *yamlConfig) {
	for key, value := range yamlCfg.Settings {
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	typed := map[string]string{
		KeyMQTTHost:     yamlCfg.MQTTHost,
		KeyDeviceName:   yamlCfg.DeviceName,
		KeyDeviceID:     yamlCfg.DeviceID,
		KeyMQTTClientID: yamlCfg.ClientID,
		KeyMQTTUsername: yamlCfg.Username,
		KeyMQTTPassword: yamlCfg.Password,
		KeyTimeout:      yamlCfg.Timeout,
		KeyLogLevel:     yamlCfg.LogLevel,
		KeyLogFormat:    yamlCfg.LogFormat,
	}
	for key, value := range typed {
		if value = strings.TrimSpace(value); value != "" {
			values[key] = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(values map[string]string, overrides *Overrides) {
	set := func(key string, value *string) {
		if value != nil && *value != "" {
			values[key] = *value
		}
	}

	set(KeyMQTTHost, overrides.MQTTHost)
	set(KeyDeviceName, overrides.DeviceName)
	set(KeyDeviceID, overrides.DeviceID)
	set(KeyMQTTClientID, overrides.ClientID)
	set(KeyMQTTUsername, overrides.Username)
	set(KeyMQTTPassword, overrides.Password)
	set(KeyLogLevel, overrides.LogLevel)
	set(KeyLogFormat, overrides.LogFormat)

	if overrides.Timeout != nil && *overrides.Timeout > 0 {
		values[KeyTimeout] = overrides.Timeout.String()
	}
}

// validateConfig validates the final configuration and returns the parsed timeout.
func validateConfig(values map[string]string) (time.Duration, error) {
	for _, key := range []string{KeyMQTTHost, KeyDeviceName, KeyDeviceID} {
		if strings.TrimSpace(values[key]) == "" {
			return 0, fmt.Errorf("%s cannot be empty", key)
		}
	}

	timeout, err := time.ParseDuration(values[KeyTimeout])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", KeyTimeout, err)
	}
	if timeout <= 0 {
		return 0, errors.New("TIMEOUT must be > 0")
	}

	if _, err := logging.ParseLevel(values[KeyLogLevel]); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	if !logging.ValidFormat(values[KeyLogFormat]) {
		return 0, fmt.Errorf("%s must be console or json, got %q", KeyLogFormat, values[KeyLogFormat])
	}

	return timeout, nil
}
