package publisher

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/ledsign/internal/publisher/publishertest"
)

func newObservedSession(t *testing.T) (*Session, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	return NewSession(zap.New(core)), logs
}

func hasLog(logs *observer.ObservedLogs, msg string) bool {
	return logs.FilterMessage(msg).Len() > 0
}

func TestRunPublishesAndDisconnects(t *testing.T) {
	session, logs := newObservedSession(t)
	client := &publishertest.Client{
		ConnectToken: publishertest.CompletedToken(nil),
		PublishToken: publishertest.CompletedToken(nil),
	}

	err := session.Run(context.Background(), client, NewRequest("led-sign/2FE598/message", "Hello World"))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	got := client.Published()
	if len(got) != 1 {
		t.Fatalf("expected one publish, got %d", len(got))
	}
	want := publishertest.Message{Topic: "led-sign/2FE598/message", QoS: 1, Payload: "Hello World"}
	if got[0] != want {
		t.Fatalf("unexpected publish: got %+v want %+v", got[0], want)
	}
	if client.Disconnects() != 1 {
		t.Fatalf("expected a single disconnect, got %d", client.Disconnects())
	}
	if session.State() != StateDone {
		t.Fatalf("expected Done, got %s", session.State())
	}
	for _, msg := range []string{"connected to MQTT broker", "message published successfully", "connection closed"} {
		if !hasLog(logs, msg) {
			t.Fatalf("expected log %q", msg)
		}
	}
}

func TestRunConnectionError(t *testing.T) {
	session, logs := newObservedSession(t)
	client := &publishertest.Client{
		ConnectToken: publishertest.CompletedToken(errors.New("dial tcp: connection refused")),
		PublishToken: publishertest.CompletedToken(nil),
	}

	err := session.Run(context.Background(), client, NewRequest("led-sign/2FE598/power", "on"))
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected broker error to be wrapped, got %v", err)
	}
	if len(client.Published()) != 0 {
		t.Fatalf("no publish must be attempted after a connection error")
	}
	if session.State() != StateError {
		t.Fatalf("expected Error, got %s", session.State())
	}
	if !hasLog(logs, "connection error") {
		t.Fatalf("expected connection error log")
	}
}

func TestRunPublishError(t *testing.T) {
	session, logs := newObservedSession(t)
	client := &publishertest.Client{
		ConnectToken: publishertest.CompletedToken(nil),
		PublishToken: publishertest.CompletedToken(errors.New("not authorized")),
	}

	err := session.Run(context.Background(), client, NewRequest("t/1/message", "x"))
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("expected ErrPublishFailed, got %v", err)
	}
	if session.State() != StateError {
		t.Fatalf("expected Error, got %s", session.State())
	}
	if !hasLog(logs, "publish error") {
		t.Fatalf("expected publish error log")
	}
}

func TestRunTimesOutWhileConnecting(t *testing.T) {
	session, logs := newObservedSession(t)
	client := &publishertest.Client{
		ConnectToken: publishertest.NewToken(),
		PublishToken: publishertest.NewToken(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := session.Run(ctx, client, NewRequest("led-sign/2FE598/brightness", "10"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if session.State() != StateTimedOut {
		t.Fatalf("expected TimedOut, got %s", session.State())
	}
	if client.Disconnects() != 1 {
		t.Fatalf("expected disconnect on timeout, got %d", client.Disconnects())
	}
	if !hasLog(logs, "connection timeout") || !hasLog(logs, "connection closed") {
		t.Fatalf("expected timeout and closed logs, got %v", logs.All())
	}
}

func TestRunTimeoutNotExtendedByConnect(t *testing.T) {
	session, _ := newObservedSession(t)
	client := &publishertest.Client{
		ConnectToken: publishertest.CompletedToken(nil),
		PublishToken: publishertest.NewToken(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := session.Run(ctx, client, NewRequest("t/1/message", "x"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if len(client.Published()) != 1 {
		t.Fatalf("expected the publish to have been issued before timing out")
	}
}

func TestRunLateAckAfterTimeoutIsIgnored(t *testing.T) {
	session, logs := newObservedSession(t)
	publishTok := publishertest.NewToken()
	client := &publishertest.Client{
		ConnectToken: publishertest.CompletedToken(nil),
		PublishToken: publishTok,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := session.Run(ctx, client, NewRequest("t/1/message", "x"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	publishTok.Complete(nil)
	time.Sleep(10 * time.Millisecond)

	if session.State() != StateTimedOut {
		t.Fatalf("terminal state must not change, got %s", session.State())
	}
	if hasLog(logs, "message published successfully") {
		t.Fatalf("late acknowledgement must not be reported")
	}
	session.ConnectionLost(errors.New("late"))
}

func TestRunCanceled(t *testing.T) {
	session, _ := newObservedSession(t)
	client := &publishertest.Client{ConnectToken: publishertest.NewToken(), PublishToken: publishertest.NewToken()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := session.Run(ctx, client, NewRequest("t/1/message", "x")); !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
}

func TestConnectionLostIsLoggedWithoutChangingOutcome(t *testing.T) {
	session, logs := newObservedSession(t)
	publishTok := publishertest.NewToken()
	client := &publishertest.Client{ConnectToken: publishertest.CompletedToken(nil), PublishToken: publishTok}

	result := make(chan error, 1)
	go func() {
		result <- session.Run(context.Background(), client, NewRequest("t/1/message", "x"))
	}()

	session.ConnectionLost(errors.New("broker went away"))
	publishTok.Complete(nil)

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("session did not finish")
	}

	if logs.FilterMessage("connection closed").Len() < 1 {
		t.Fatalf("expected connection closed log")
	}
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	client := &publishertest.Client{ConnectToken: publishertest.CompletedToken(nil), PublishToken: publishertest.CompletedToken(nil)}

	if err := NewSession(nil).Run(context.Background(), client, Request{}); !errors.Is(err, ErrInvalidTopic) {
		t.Fatalf("expected ErrInvalidTopic, got %v", err)
	}
	if err := NewSession(nil).Run(context.Background(), client, Request{Topic: "a", QoS: 3}); !errors.Is(err, ErrInvalidQoS) {
		t.Fatalf("expected ErrInvalidQoS, got %v", err)
	}
}

func TestRunOnlyOnce(t *testing.T) {
	session := NewSession(nil)
	client := &publishertest.Client{ConnectToken: publishertest.CompletedToken(nil), PublishToken: publishertest.CompletedToken(nil)}
	req := NewRequest("t/1/message", "x")

	if err := session.Run(context.Background(), client, req); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	if err := session.Run(context.Background(), client, req); !errors.Is(err, ErrSessionUsed) {
		t.Fatalf("expected ErrSessionUsed, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	if StatePublishing.String() != "Publishing" || State(99).String() != "Unknown" {
		t.Fatalf("unexpected state names")
	}
	if StateConnected.Terminal() || !StateTimedOut.Terminal() {
		t.Fatalf("unexpected terminal classification")
	}
}
