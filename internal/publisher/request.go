package publisher

import "fmt"

// DefaultQoS requests at-least-once delivery.
const DefaultQoS byte = 1

const maxQoS = 2

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Request is a single message to publish.
type Request struct {
	Topic    string
	Payload  string
	QoS      byte
	Retained bool
}

// NewRequest builds a non-retained QoS 1 request.
func NewRequest(topic, payload string) Request {
	return Request{Topic: topic, Payload: payload, QoS: DefaultQoS}
}

// Validate checks the request before any connection is opened.
func (r Request) Validate() error {
	if r.Topic == "" {
		return ErrInvalidTopic
	}
	if r.QoS > maxQoS {
		return ErrInvalidQoS
	}
	if len(r.Payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(r.Payload), maxPayloadSize)
	}
	return nil
}
