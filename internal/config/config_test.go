package config

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")

	cfg, err := Load(&Overrides{EnvFile: missing})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MQTTHost() != "mqtt://localhost:1883" {
		t.Fatalf("unexpected default host %s", cfg.MQTTHost())
	}
	if cfg.DeviceName() != "led-sign" || cfg.DeviceID() != "2FE598" {
		t.Fatalf("unexpected device defaults: %s/%s", cfg.DeviceName(), cfg.DeviceID())
	}
	if cfg.Timeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Timeout())
	}

	warnings := cfg.Warnings()
	if len(warnings) != 1 || !errors.Is(warnings[0], ErrEnvFileUnreadable) {
		t.Fatalf("expected a single ErrEnvFileUnreadable warning, got %v", warnings)
	}
}

func TestLoadEnvFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, ".env", strings.Join([]string{
		"# broker",
		"MQTT_HOST = mqtt://broker.local:1883 ",
		"",
		"DEVICE_ID=AAAAAA",
		"DEVICE_ID=BBBBBB",
		"EXTRA=kept",
	}, "\n"))

	cfg, err := Load(&Overrides{EnvFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MQTTHost() != "mqtt://broker.local:1883" {
		t.Fatalf("expected trimmed host override, got %q", cfg.MQTTHost())
	}
	if cfg.DeviceID() != "BBBBBB" {
		t.Fatalf("expected later duplicate to win, got %s", cfg.DeviceID())
	}
	if cfg.DeviceName() != "led-sign" {
		t.Fatalf("expected default device name to survive, got %s", cfg.DeviceName())
	}
	if v, ok := cfg.Get("EXTRA"); !ok || v != "kept" {
		t.Fatalf("expected extra key to be tolerated, got %q (%v)", v, ok)
	}
	if len(cfg.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %v", cfg.Warnings())
	}
}

func TestLoadMatchesDefaultsOverriddenByFile(t *testing.T) {
	entries := map[string]string{
		"MQTT_HOST":   "mqtts://example.com:8883",
		"DEVICE_NAME": "sign",
		"FOO":         "bar",
	}
	var lines []string
	for k, v := range entries {
		lines = append(lines, k+"="+v)
	}
	path := writeFile(t, ".env", strings.Join(lines, "\n"))

	cfg, err := Load(&Overrides{EnvFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := defaultValues()
	maps.Copy(want, entries)
	if got := cfg.Values(); !maps.Equal(got, want) {
		t.Fatalf("unexpected values:\n got %v\nwant %v", got, want)
	}
}

func TestLoadAppliesYAMLThenEnvThenCLI(t *testing.T) {
	yamlPath := writeFile(t, "config.yaml", `
mqtt_host: tcp://yaml:1883
device_name: yaml-sign
device_id: YAML01
timeout: 3s
settings:
  ZONE: lobby
`)
	envPath := writeFile(t, ".env", "DEVICE_NAME=env-sign\n")
	deviceID := "CLI001"
	timeout := 2 * time.Second

	cfg, err := Load(&Overrides{
		ConfigFile: yamlPath,
		EnvFile:    envPath,
		DeviceID:   &deviceID,
		Timeout:    &timeout,
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.MQTTHost() != "tcp://yaml:1883" {
		t.Fatalf("expected YAML host, got %s", cfg.MQTTHost())
	}
	if cfg.DeviceName() != "env-sign" {
		t.Fatalf("expected env file to override YAML, got %s", cfg.DeviceName())
	}
	if cfg.DeviceID() != "CLI001" {
		t.Fatalf("expected CLI to override YAML, got %s", cfg.DeviceID())
	}
	if cfg.Timeout() != 2*time.Second {
		t.Fatalf("expected CLI timeout, got %s", cfg.Timeout())
	}
	if v, _ := cfg.Get("ZONE"); v != "lobby" {
		t.Fatalf("expected YAML settings entry, got %q", v)
	}
}

func TestLoadRejectsMissingYAML(t *testing.T) {
	_, err := Load(&Overrides{
		ConfigFile: filepath.Join(t.TempDir(), "absent.yaml"),
		EnvFile:    filepath.Join(t.TempDir(), ".env"),
	})
	if err == nil {
		t.Fatalf("expected error for missing YAML config")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{name: "empty host", env: "MQTT_HOST=\n"},
		{name: "bad timeout", env: "TIMEOUT=soon\n"},
		{name: "negative timeout", env: "TIMEOUT=-1s\n"},
		{name: "bad log level", env: "LOG_LEVEL=chatty\n"},
		{name: "bad log format", env: "LOG_FORMAT=xml\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, ".env", tc.env)
			if _, err := Load(&Overrides{EnvFile: path}); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestNewLayersOverDefaults(t *testing.T) {
	cfg, err := New(map[string]string{KeyDeviceID: "ABC123"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.DeviceID() != "ABC123" || cfg.DeviceName() != "led-sign" {
		t.Fatalf("unexpected config: %v", cfg.Values())
	}

	values := cfg.Values()
	values[KeyDeviceID] = "mutated"
	if cfg.DeviceID() != "ABC123" {
		t.Fatalf("Values must return a copy")
	}
}
