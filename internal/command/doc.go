// Package command turns the message, power and brightness flags into a single
// validated Directive and derives the topic it is published to.
package command
