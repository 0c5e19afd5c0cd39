package command

import (
	"fmt"
	"io"
)

// UsageData holds the values interpolated into the usage text.
type UsageData struct {
	Program    string
	MQTTHost   string
	DeviceName string
	DeviceID   string
}

// WriteUsage prints the help text with the current configuration and the
// topic each option publishes to.
func WriteUsage(w io.Writer, data UsageData) error {
	_, err := fmt.Fprintf(w, `
Usage: %[1]s [OPTION]

Configuration is loaded from .env file:
  MQTT_HOST     - MQTT broker URL (current: %[2]s)
  DEVICE_NAME   - Device name (current: %[3]s)
  DEVICE_ID     - Device ID (current: %[4]s)

Options (use one):
  -m <message>    Send message (topic: %[5]s)
  -p <on|off>     Set power state (topic: %[6]s)
  -b <0-15>       Set brightness level (topic: %[7]s)

Examples:
  %[1]s -m "Hello World"
  %[1]s -p on
  %[1]s -b 10

`,
		data.Program,
		data.MQTTHost,
		data.DeviceName,
		data.DeviceID,
		Topic(data.DeviceName, data.DeviceID, SubjectMessage),
		Topic(data.DeviceName, data.DeviceID, SubjectPower),
		Topic(data.DeviceName, data.DeviceID, SubjectBrightness),
	)
	return err
}
