package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// defaultDisconnectQuiesce is the time in milliseconds to wait for pending work on disconnect.
const defaultDisconnectQuiesce uint = 250

// Client is the part of pahomqtt.Client a Session drives.
type Client interface {
	Connect() pahomqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

type eventKind int

const (
	eventConnectDone eventKind = iota
	eventPublishDone
	eventConnectionLost
)

type event struct {
	kind eventKind
	err  error
}

// Session runs one connect-then-publish sequence.
//
// Token completions and connection-lost callbacks arrive on paho goroutines;
// they are queued as events and applied only by the Run loop, which is the
// single owner of the session state. The first terminal state wins and
// anything arriving afterwards is dropped.
type Session struct {
	logger  *zap.Logger
	quiesce uint

	events chan event
	stop   chan struct{}

	mu    sync.Mutex
	state State
	prev  State
	ran   bool
}

// Option configures a Session.
type Option func(*Session)

// WithDisconnectQuiesce overrides the disconnect quiesce in milliseconds.
func WithDisconnectQuiesce(ms uint) Option {
	return func(s *Session) {
		s.quiesce = ms
	}
}

// NewSession creates a session that logs its progress to logger.
func NewSession(logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		logger:  logger,
		quiesce: defaultDisconnectQuiesce,
		events:  make(chan event, 4),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current step of the sequence.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnectionLost feeds a broker-side or network disconnect into the session.
// Wire it to pahomqtt.ClientOptions.SetConnectionLostHandler.
func (s *Session) ConnectionLost(err error) {
	s.emit(event{kind: eventConnectionLost, err: err})
}

// Run connects client, publishes req once and disconnects. It returns nil
// once the broker acknowledged the message. The deadline and cancellation of
// ctx bound the whole sequence; progress does not extend it.
func (s *Session) Run(ctx context.Context, client Client, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return ErrSessionUsed
	}
	s.ran = true
	s.mu.Unlock()
	defer close(s.stop)

	s.setState(StateConnecting)
	s.watch(client.Connect(), eventConnectDone)

	for {
		select {
		case <-ctx.Done():
			return s.abort(ctx, client)
		case ev := <-s.events:
			if done, err := s.apply(client, req, ev); done {
				return err
			}
		}
	}
}

// apply performs the transition triggered by ev. It reports whether the
// session reached a terminal state.
func (s *Session) apply(client Client, req Request, ev event) (bool, error) {
	state := s.State()

	switch ev.kind {
	case eventConnectionLost:
		s.logConnectionClosed(ev.err)
		return false, nil

	case eventConnectDone:
		if state != StateConnecting {
			return false, nil
		}
		if ev.err != nil {
			s.setState(StateError)
			s.logger.Error("connection error", zap.Error(ev.err))
			return true, fmt.Errorf("%w: %w", ErrConnectionFailed, ev.err)
		}

		s.setState(StateConnected)
		s.logger.Info("connected to MQTT broker",
			zap.String("topic", req.Topic),
			zap.String("payload", req.Payload),
		)

		s.setState(StatePublishing)
		s.watch(client.Publish(req.Topic, req.QoS, req.Retained, req.Payload), eventPublishDone)
		return false, nil

	case eventPublishDone:
		if state != StatePublishing {
			return false, nil
		}
		if ev.err != nil {
			s.setState(StateError)
			s.logger.Error("publish error", zap.String("topic", req.Topic), zap.Error(ev.err))
			s.disconnect(client)
			return true, fmt.Errorf("%w: %w", ErrPublishFailed, ev.err)
		}

		s.setState(StateDone)
		s.logger.Info("message published successfully", zap.String("topic", req.Topic))
		s.disconnect(client)
		return true, nil
	}

	return false, nil
}

// abort ends the session because ctx finished first.
func (s *Session) abort(ctx context.Context, client Client) error {
	s.setState(StateTimedOut)

	err, msg := ErrTimeout, "connection timeout"
	if errors.Is(ctx.Err(), context.Canceled) {
		err, msg = ErrCanceled, "canceled"
	}
	s.logger.Error(msg, zap.Stringer("last_state", s.lastActive()))
	s.disconnect(client)
	return err
}

func (s *Session) disconnect(client Client) {
	client.Disconnect(s.quiesce)
	s.logConnectionClosed(nil)
}

func (s *Session) logConnectionClosed(err error) {
	if err != nil {
		s.logger.Info("connection closed", zap.Error(err))
		return
	}
	s.logger.Info("connection closed")
}

// watch forwards the completion of tok as an event until the session stops.
func (s *Session) watch(tok pahomqtt.Token, kind eventKind) {
	go func() {
		select {
		case <-tok.Done():
			s.emit(event{kind: kind, err: tok.Error()})
		case <-s.stop:
		}
	}()
}

func (s *Session) emit(ev event) {
	select {
	case s.events <- ev:
	case <-s.stop:
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prev = s.state
	s.state = state
}

// lastActive returns the state held before the terminal transition.
func (s *Session) lastActive() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prev
}
