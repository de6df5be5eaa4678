package telemetry

import "fmt"

// EventKind classifies a builder diagnostic.
type EventKind string

const (
	EventScaleChange EventKind = "scale_change"
	EventFixChange   EventKind = "fix_change"
	EventStartTime   EventKind = "start_time"
	EventEmptySample EventKind = "empty_sample"
	EventBadFix      EventKind = "bad_fix"
	EventBadFixSkip  EventKind = "bad_fix_skip"
	EventGlitchLat   EventKind = "glitch_lat"
	EventGlitchLon   EventKind = "glitch_lon"
	EventBadScale    EventKind = "bad_scale"
	EventNoSysTime   EventKind = "no_system_time"
)

// Event is a structured diagnostic emitted alongside (never instead of) the
// Stats counters. Prev/New carry the relevant values for context changes and
// glitch rejections, zero otherwise.
type Event struct {
	Kind EventKind
	Tag  string
	Prev float64
	New  float64
}

func (e Event) String() string {
	switch e.Kind {
	case EventFixChange, EventGlitchLat, EventGlitchLon:
		return fmt.Sprintf("%s %s prev=%g new=%g", e.Tag, e.Kind, e.Prev, e.New)
	default:
		return fmt.Sprintf("%s %s", e.Tag, e.Kind)
	}
}
