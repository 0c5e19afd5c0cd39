package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/ledsign/internal/command"
	"github.com/eugenenazirov/ledsign/internal/config"
	"github.com/eugenenazirov/ledsign/internal/publisher"
)

// ClientFactory creates the MQTT client a session drives.
type ClientFactory func(cfg config.Config, session *publisher.Session) publisher.Client

// App encapsulates the configuration, MQTT client and publish session of one run.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	session *publisher.Session
	client  publisher.Client
}

// Option configures App construction.
type Option func(*appOptions)

type appOptions struct {
	clientFactory ClientFactory
	sessionOpts   []publisher.Option
}

// WithClientFactory overrides how the MQTT client is created (primarily for tests).
func WithClientFactory(factory ClientFactory) Option {
	return func(o *appOptions) {
		o.clientFactory = factory
	}
}

// WithSessionOptions passes options through to the publish session.
func WithSessionOptions(opts ...publisher.Option) Option {
	return func(o *appOptions) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	o := appOptions{
		clientFactory: func(cfg config.Config, session *publisher.Session) publisher.Client {
			return publisher.NewClient(cfg, session)
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	session := publisher.NewSession(logger, o.sessionOpts...)

	return &App{
		cfg:     cfg,
		logger:  logger,
		session: session,
		client:  o.clientFactory(cfg, session),
	}
}

// Request derives the publish request for a directive.
func (a *App) Request(d command.Directive) publisher.Request {
	topic := command.Topic(a.cfg.DeviceName(), a.cfg.DeviceID(), d.Subject)
	return publisher.NewRequest(topic, d.Payload)
}

// Run publishes the directive once. The whole sequence must finish within the
// configured timeout measured from launchedAt; the deadline is released as
// soon as Run returns.
func (a *App) Run(ctx context.Context, launchedAt time.Time, d command.Directive) error {
	ctx, cancel := context.WithDeadline(ctx, launchedAt.Add(a.cfg.Timeout()))
	defer cancel()

	a.logger.Info("connecting", zap.String("broker", a.cfg.MQTTHost()))
	return a.session.Run(ctx, a.client, a.Request(d))
}

// Session returns the publish session for state inspection.
func (a *App) Session() *publisher.Session {
	return a.session
}
