package gpmf

import (
	"fmt"
	"strings"
	"time"
)

// FourCC tags the telemetry builder dispatches on. Records carrying any
// other tag are opaque and ignored downstream.
const (
	TagScale   = "SCAL"
	TagGPSTime = "GPSU"
	TagGPSFix  = "GPSF"
	TagGPS5    = "GPS5"
	TagSysTime = "SYST"
	TagGPRI    = "GPRI"
)

// Record is one tagged unit of telemetry. Payload is one of the concrete
// types below, or nil for tags this package does not decode. Records are
// immutable once produced by Parse.
type Record struct {
	Tag     string
	Payload any
}

// Scale holds the three divisors applied elementwise to the spatial axes of
// subsequent raw samples until the next SCAL record replaces it.
type Scale struct {
	Lat float64
	Lon float64
	Alt float64
}

// GPSTime is the decoded GPSU wall-clock context for subsequent GPS5 samples.
type GPSTime struct {
	Time time.Time
}

// FixCode is the GPSF receiver lock-quality code. 0 means no fix.
type FixCode uint32

// GPS5Sample carries one un-scaled sample from a GPS5 repeated group.
// Field values are the raw fixed-point integers widened to float64.
type GPS5Sample struct {
	Lat     float64
	Lon     float64
	Alt     float64
	Speed2D float64
	Speed3D float64
}

// GPS5 is the primary-dialect position record: a repeated group of samples
// sharing the most recent SCAL/GPSU/GPSF context.
type GPS5 struct {
	Samples []GPS5Sample
}

// SysTime is the raw SYST system-time pair used by the alternate (Karma)
// dialect. Both fields are un-scaled.
type SysTime struct {
	Seconds float64
	Millis  float64
}

// GPRI is the alternate-dialect single-sample position record.
type GPRI struct {
	Sample GPS5Sample
}

// String renders the record for verbose diagnostics.
func (r Record) String() string {
	switch p := r.Payload.(type) {
	case Scale:
		return fmt.Sprintf("%s scale=(%g,%g,%g)", r.Tag, p.Lat, p.Lon, p.Alt)
	case GPSTime:
		return fmt.Sprintf("%s time=%s", r.Tag, p.Time.UTC().Format(time.RFC3339Nano))
	case FixCode:
		return fmt.Sprintf("%s fix=%d", r.Tag, uint32(p))
	case GPS5:
		var b strings.Builder
		fmt.Fprintf(&b, "%s samples=%d", r.Tag, len(p.Samples))
		for _, s := range p.Samples {
			fmt.Fprintf(&b, " (%g,%g,%g)", s.Lat, s.Lon, s.Alt)
		}
		return b.String()
	case SysTime:
		return fmt.Sprintf("%s seconds=%g millis=%g", r.Tag, p.Seconds, p.Millis)
	case GPRI:
		s := p.Sample
		return fmt.Sprintf("%s sample=(%g,%g,%g)", r.Tag, s.Lat, s.Lon, s.Alt)
	default:
		return fmt.Sprintf("%s (opaque)", r.Tag)
	}
}
