// Package application provides application initialization and dependency wiring.
// It builds the MQTT client and publish session from the resolved configuration,
// keeping the main package focused on CLI parsing and exit codes.
package application
