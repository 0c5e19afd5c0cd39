// Package publishertest provides in-memory stand-ins for the paho client and
// tokens driven by publisher.Session.
package publishertest

import (
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Token implements pahomqtt.Token and completes when Complete is called.
type Token struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewToken returns a pending token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// CompletedToken returns a token that already finished with err.
func CompletedToken(err error) *Token {
	tok := NewToken()
	tok.Complete(err)
	return tok
}

// Complete finishes the token. Only the first call has an effect.
func (t *Token) Complete(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

func (t *Token) Wait() bool {
	<-t.done
	return true
}

func (t *Token) WaitTimeout(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.done:
		return true
	case <-timer.C:
		return false
	}
}

func (t *Token) Done() <-chan struct{} {
	return t.done
}

func (t *Token) Error() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Message is a publish recorded by Client.
type Message struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  string
}

// Client records calls and answers with the configured tokens.
// A nil token never completes.
type Client struct {
	ConnectToken *Token
	PublishToken *Token

	mu          sync.Mutex
	connects    int
	published   []Message
	disconnects int
}

// NewAckingClient returns a client whose broker accepts the connection and
// acknowledges the publish.
func NewAckingClient() *Client {
	return &Client{ConnectToken: CompletedToken(nil), PublishToken: CompletedToken(nil)}
}

// NewSilentClient returns a client whose broker never answers.
func NewSilentClient() *Client {
	return &Client{ConnectToken: NewToken(), PublishToken: NewToken()}
}

// NewUnreachableClient returns a client whose connection attempt fails with err.
func NewUnreachableClient(err error) *Client {
	return &Client{ConnectToken: CompletedToken(err), PublishToken: NewToken()}
}

func (c *Client) Connect() pahomqtt.Token {
	c.mu.Lock()
	c.connects++
	c.mu.Unlock()
	return tokenOrPending(c.ConnectToken)
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	msg := Message{Topic: topic, QoS: qos, Retained: retained}
	switch p := payload.(type) {
	case string:
		msg.Payload = p
	case []byte:
		msg.Payload = string(p)
	}

	c.mu.Lock()
	c.published = append(c.published, msg)
	c.mu.Unlock()
	return tokenOrPending(c.PublishToken)
}

func (c *Client) Disconnect(uint) {
	c.mu.Lock()
	c.disconnects++
	c.mu.Unlock()
}

// Published returns every recorded publish.
func (c *Client) Published() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.published))
	copy(out, c.published)
	return out
}

// Connects returns how many times Connect was called.
func (c *Client) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

// Disconnects returns how many times Disconnect was called.
func (c *Client) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

func tokenOrPending(tok *Token) pahomqtt.Token {
	if tok == nil {
		return NewToken()
	}
	return tok
}
