package command

// Subject selects the leaf topic segment and payload shape of a directive.
type Subject string

const (
	SubjectMessage    Subject = "message"
	SubjectPower      Subject = "power"
	SubjectBrightness Subject = "brightness"
)

// Flag names, in their short form, that carry a directive.
const (
	FlagMessage    = "m"
	FlagPower      = "p"
	FlagBrightness = "b"
)

const (
	MinBrightness = 0
	MaxBrightness = 15
)

// Occurrence is a single directive flag as it appeared on the command line.
type Occurrence struct {
	Flag  string
	Value string
}

// Directive is the resolved instruction for the sign.
type Directive struct {
	Subject Subject
	Payload string
}

// IsZero reports whether no directive was resolved.
func (d Directive) IsZero() bool {
	return d.Subject == "" || d.Payload == ""
}
