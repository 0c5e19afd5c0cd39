package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/ledsign/internal/application"
	"github.com/eugenenazirov/ledsign/internal/command"
	"github.com/eugenenazirov/ledsign/internal/config"
	"github.com/eugenenazirov/ledsign/internal/logging"
)

const programName = "ledsign"

var signalNotifyContext = signal.NotifyContext

func main() {
	launchedAt := time.Now()
	os.Exit(run(os.Args[1:], launchedAt, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, launchedAt time.Time, stdout, stderr io.Writer, opts ...application.Option) int {
	kingpinApp := kingpin.New(programName, "Publish a single control message to an MQTT-connected LED sign")
	kingpinApp.UsageWriter(stderr)
	kingpinApp.ErrorWriter(stderr)

	terminated, exitCode := false, 0
	kingpinApp.Terminate(func(code int) {
		terminated, exitCode = true, code
	})

	var directives command.Recorder
	kingpinApp.Flag("message", "Send message").Short('m').PlaceHolder("<message>").SetValue(directives.Value(command.FlagMessage))
	kingpinApp.Flag("power", "Set power state").Short('p').PlaceHolder("<on|off>").SetValue(directives.Value(command.FlagPower))
	kingpinApp.Flag("brightness", "Set brightness level").Short('b').PlaceHolder("<0-15>").SetValue(directives.Value(command.FlagBrightness))

	envFile := kingpinApp.Flag("env-file", "Path to KEY=VALUE environment file (default: .env next to the executable)").String()
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	host := kingpinApp.Flag("host", "MQTT broker URL").String()
	deviceName := kingpinApp.Flag("device-name", "Device name topic segment").String()
	deviceID := kingpinApp.Flag("device-id", "Device ID topic segment").String()
	clientID := kingpinApp.Flag("client-id", "MQTT client identifier").String()
	username := kingpinApp.Flag("username", "MQTT username").String()
	password := kingpinApp.Flag("password", "MQTT password").String()
	timeout := kingpinApp.Flag("timeout", "End-to-end bound for connecting and publishing").Duration()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	logFormat := kingpinApp.Flag("log-format", "Log format (console, json)").String()

	_, parseErr := kingpinApp.Parse(attachFlagValues(args))
	if terminated {
		return exitCode
	}

	overrides := &config.Overrides{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
		MQTTHost:   host,
		DeviceName: deviceName,
		DeviceID:   deviceID,
		ClientID:   clientID,
		Username:   username,
		Password:   password,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
	}
	if *timeout > 0 {
		overrides.Timeout = timeout
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel(),
		Format: cfg.LogFormat(),
		Stdout: stdout,
		Stderr: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range cfg.Warnings() {
		logger.Warn("could not load .env file, using defaults", zap.Error(warning))
	}

	if parseErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", parseErr)
		writeUsage(stderr, cfg)
		return 1
	}

	directive, err := command.Resolve(directives.Occurrences())
	switch {
	case errors.Is(err, command.ErrMissingDirective):
		writeUsage(stderr, cfg)
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signalNotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := application.New(cfg, logger, opts...)
	if err := app.Run(ctx, launchedAt, directive); err != nil {
		return 1
	}
	return 0
}

func writeUsage(w io.Writer, cfg config.Config) {
	_ = command.WriteUsage(w, command.UsageData{
		Program:    programName,
		MQTTHost:   cfg.MQTTHost(),
		DeviceName: cfg.DeviceName(),
		DeviceID:   cfg.DeviceID(),
	})
}

// directiveFlags always consume the following argument, even one that starts
// with '-' (a negative brightness, a message such as "-hi").
var directiveFlags = map[string]string{
	"-m":           "message",
	"-p":           "power",
	"-b":           "brightness",
	"--message":    "message",
	"--power":      "power",
	"--brightness": "brightness",
}

// attachFlagValues rewrites "-b -1" as "--brightness=-1" so the flag parser
// does not mistake the value for another flag.
func attachFlagValues(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, ok := directiveFlags[arg]
		if !ok || i+1 >= len(args) {
			out = append(out, arg)
			continue
		}
		out = append(out, "--"+name+"="+args[i+1])
		i++
	}
	return out
}
