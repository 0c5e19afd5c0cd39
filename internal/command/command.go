package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve walks flag occurrences in command-line order and returns the
// directive built from the last one. Validation stops at the first invalid
// power or brightness value. Occurrences with an empty value are ignored.
func Resolve(occurrences []Occurrence) (Directive, error) {
	var directive Directive

	for _, occ := range occurrences {
		if occ.Value == "" {
			continue
		}

		switch occ.Flag {
		case FlagMessage:
			directive = Directive{Subject: SubjectMessage, Payload: occ.Value}
		case FlagPower:
			state, err := ParsePower(occ.Value)
			if err != nil {
				return Directive{}, err
			}
			directive = Directive{Subject: SubjectPower, Payload: state}
		case FlagBrightness:
			level, err := ParseBrightness(occ.Value)
			if err != nil {
				return Directive{}, err
			}
			directive = Directive{Subject: SubjectBrightness, Payload: strconv.Itoa(level)}
		}
	}

	if directive.IsZero() {
		return Directive{}, ErrMissingDirective
	}
	return directive, nil
}

// ParsePower normalizes a power state to "on" or "off".
func ParsePower(raw string) (string, error) {
	state := strings.ToLower(raw)
	if state != "on" && state != "off" {
		return "", fmt.Errorf("%w: got %q", ErrInvalidPower, raw)
	}
	return state, nil
}

// ParseBrightness parses a brightness level within [MinBrightness, MaxBrightness].
func ParseBrightness(raw string) (int, error) {
	level, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidBrightness, raw)
	}
	if level < MinBrightness || level > MaxBrightness {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidBrightness, level)
	}
	return level, nil
}

// Topic builds "{deviceName}/{deviceID}/{subject}".
func Topic(deviceName, deviceID string, subject Subject) string {
	return fmt.Sprintf("%s/%s/%s", deviceName, deviceID, subject)
}
