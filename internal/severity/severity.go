package severity

import "strings"

// Level is the three-step operational severity of a vehicle.
type Level string

const (
	Green  Level = "green"
	Yellow Level = "yellow"
	Red    Level = "red"
)

func (l Level) rank() int {
	switch l {
	case Red:
		return 2
	case Yellow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	switch l {
	case Green, Yellow, Red:
		return true
	}
	return false
}

// Max returns the more severe of a and b (red > yellow > green).
func Max(a, b Level) Level {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// SegmentKind tags where a note segment came from, so callers can render or
// filter segments without parsing delimiter-joined strings.
type SegmentKind string

const (
	SegmentMissingItems SegmentKind = "missing_items"
	SegmentDispute      SegmentKind = "dispute"
	SegmentDamage       SegmentKind = "damage"
)

// Segment is one provenance-tagged piece of the composed severity note.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Result is the outcome of aggregating all severity signals for one
// start-of-shift submission.
type Result struct {
	Level    Level
	Segments []Segment
}

// Note renders the ordered segments into the display note.
func (r Result) Note() string {
	if len(r.Segments) == 0 {
		return ""
	}
	parts := make([]string, len(r.Segments))
	for i, s := range r.Segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, " | ")
}
