// Package publisher drives a single MQTT connect-and-publish sequence as an
// explicit state machine (Connecting, Connected, Publishing, then Done, Error
// or TimedOut) on top of github.com/eclipse/paho.mqtt.golang.
package publisher
