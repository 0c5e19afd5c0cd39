package publisher

import (
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/eugenenazirov/ledsign/internal/config"
)

const (
	// clientIDPrefix prefixes generated client identifiers.
	clientIDPrefix = "ledsign-"

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12
)

// secureSchemes are broker URL schemes paho dials over TLS.
var secureSchemes = map[string]bool{
	"ssl":      true,
	"tls":      true,
	"tcps":     true,
	"mqtts":    true,
	"mqtt+ssl": true,
	"wss":      true,
}

// BuildClientOptions creates paho options for a single-shot session.
//
// This configures:
//   - Broker URL exactly as configured (mqtt://, tcp://, ssl://, ws://, ...)
//   - Client ID, generated when not configured
//   - Authentication credentials (if provided)
//   - TLS 1.2 minimum for secure schemes
//   - Clean session, no auto-reconnect and no connect retry
//   - Connection lost notifications routed to session
func BuildClientOptions(cfg config.Config, session *Session) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(cfg.MQTTHost())

	clientID := cfg.ClientID()
	if clientID == "" {
		clientID = GenerateClientID()
	}
	opts.SetClientID(clientID)

	if cfg.Username() != "" {
		opts.SetUsername(cfg.Username())
		opts.SetPassword(cfg.Password())
	}

	opts.SetCleanSession(true)

	// One attempt only; the session deadline bounds everything.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(cfg.Timeout())
	opts.SetWriteTimeout(cfg.Timeout())

	if IsSecureBroker(cfg.MQTTHost()) {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	if session != nil {
		opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			session.ConnectionLost(err)
		})
	}

	return opts
}

// NewClient creates an unconnected paho client for cfg.
func NewClient(cfg config.Config, session *Session) pahomqtt.Client {
	return pahomqtt.NewClient(BuildClientOptions(cfg, session))
}

// IsSecureBroker reports whether the broker URL uses a TLS scheme.
func IsSecureBroker(broker string) bool {
	u, err := url.Parse(broker)
	if err != nil {
		return false
	}
	return secureSchemes[strings.ToLower(u.Scheme)]
}

// GenerateClientID returns a random client identifier.
func GenerateClientID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return clientIDPrefix + strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return clientIDPrefix + hex.EncodeToString(buf)
}
