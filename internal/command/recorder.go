package command

// Recorder collects directive flag occurrences in the order the parser sees
// them, so repeated and mixed flags can be resolved last-one-wins.
type Recorder struct {
	occurrences []Occurrence
}

// Value returns a flag value bound to flag. It satisfies kingpin.Value and
// reports itself cumulative so the flag may be repeated.
func (r *Recorder) Value(flag string) *FlagValue {
	return &FlagValue{flag: flag, recorder: r}
}

// Occurrences returns the recorded flags in command-line order.
func (r *Recorder) Occurrences() []Occurrence {
	out := make([]Occurrence, len(r.occurrences))
	copy(out, r.occurrences)
	return out
}

// FlagValue records each value set on one directive flag.
type FlagValue struct {
	flag     string
	last     string
	recorder *Recorder
}

func (v *FlagValue) Set(value string) error {
	v.last = value
	v.recorder.occurrences = append(v.recorder.occurrences, Occurrence{Flag: v.flag, Value: value})
	return nil
}

func (v *FlagValue) String() string {
	return v.last
}

func (v *FlagValue) IsCumulative() bool {
	return true
}

// Reset drops every occurrence recorded for this flag.
func (v *FlagValue) Reset() {
	v.last = ""
	kept := v.recorder.occurrences[:0]
	for _, occ := range v.recorder.occurrences {
		if occ.Flag != v.flag {
			kept = append(kept, occ)
		}
	}
	v.recorder.occurrences = kept
}
