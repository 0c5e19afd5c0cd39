package command

import "errors"

var (
	// ErrMissingDirective is returned when no message, power or brightness flag resolved to a payload.
	ErrMissingDirective = errors.New("no command given")
	// ErrInvalidPower is returned when the power flag is neither "on" nor "off".
	ErrInvalidPower = errors.New(`power must be "on" or "off"`)
	// ErrInvalidBrightness is returned when the brightness flag is not an integer in [0, 15].
	ErrInvalidBrightness = errors.New("brightness must be a number between 0 and 15")
)
