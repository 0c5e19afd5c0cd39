package publisher

import "errors"

// Terminal failures of a publish session.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when the broker connection cannot be established.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when the broker rejects or fails the publish.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrTimeout is returned when the session deadline passes before completion.
	ErrTimeout = errors.New("mqtt: connection timeout")

	// ErrCanceled is returned when the session context is canceled before completion.
	ErrCanceled = errors.New("mqtt: canceled")

	// ErrInvalidTopic is returned when the request has an empty topic.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrSessionUsed is returned when Run is called more than once on a Session.
	ErrSessionUsed = errors.New("mqtt: session already run")
)
