package mood

import "maps"

var defaultLabels = map[string]string{
	"excitement":               "Excitement",
	"talkative":                "Talkative",
	"inflated_self_confidence": "Inflated self confidence",
	"sleep_high":               "Sleep (high)",
	"energy":                   "Energy",
	"unmotivated":              "Unmotivated",
	"sleep_low":                "Sleep (low)",
	"guilt":                    "Guilt",
	"indecisive":               "Indecisive",
	"crying":                   "Crying",
	"impulsive":                "Impulsive",
	"absent_minded":            "Absent minded",
	"time_management":          "Time management",
	"interrupting":             "Interrupting",
	"overwhelmed":              "Overwhelmed",
	NoteKey:                    "Note",
}

// Labels is a read-only key to display-label mapping. Edits go through
// Registry.SetLabel, which hands out a new Labels value.
type Labels struct {
	m map[string]string
}

func newLabels(overrides map[string]string) Labels {
	m := maps.Clone(defaultLabels)
	for k, v := range overrides {
		if v != "" {
			m[k] = v
		}
	}
	return Labels{m: m}
}

// Label returns the display label for key, or the key itself when none is known.
func (l Labels) Label(key string) string {
	if v, ok := l.m[key]; ok {
		return v
	}
	return key
}
