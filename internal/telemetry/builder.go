package telemetry

import (
	"math"
	"time"

	"gopro2gpx-ng/internal/gpmf"
)

// NoFix is the GPSF code signalling the receiver has no satellite lock.
const NoFix gpmf.FixCode = 0

// DefaultGlitchThresholdDeg is the coordinate-jump filter limit in degrees.
const DefaultGlitchThresholdDeg = 1.0

// Options control one build run.
type Options struct {
	// SkipBadFix drops samples seen under an active no-fix state instead of
	// passing them through with only a counter recorded.
	SkipBadFix bool

	// GlitchThresholdDeg overrides the coordinate-jump limit. Values <= 0
	// select DefaultGlitchThresholdDeg.
	GlitchThresholdDeg float64

	// Events receives structured diagnostics when non-nil.
	Events func(Event)
}

// Result is the outcome of folding one record sequence.
type Result struct {
	Points    []Point
	StartTime *time.Time
	Stats     Stats
}

// Build folds an ordered record sequence into the accepted position points,
// the track start time (nil when no GPSU record was seen), and the run
// statistics. Data comes unscaled; each sample is divided by the scale
// context active at the time it is processed.
//
// All state lives in the builder for the duration of one call; nothing
// survives across calls.
func Build(records []gpmf.Record, opts Options) Result {
	b := newBuilder(opts)
	for _, rec := range records {
		b.apply(rec)
	}
	return Result{Points: b.points, StartTime: b.startTime, Stats: b.stats}
}

type builder struct {
	opts      Options
	threshold float64

	scale gpmf.Scale

	// The active fix code trails the received one by a single GPSF record:
	// a newly reported code only takes effect when the next GPSF arrives.
	// The first code ever seen applies immediately.
	fix        gpmf.FixCode
	fixPending gpmf.FixCode
	haveFix    bool

	gpsTime     time.Time
	sysTime     gpmf.SysTime
	haveSysTime bool

	lastLat  float64
	lastLon  float64
	havePrev bool

	startTime *time.Time
	points    []Point
	stats     Stats
}

func newBuilder(opts Options) *builder {
	threshold := opts.GlitchThresholdDeg
	if threshold <= 0 {
		threshold = DefaultGlitchThresholdDeg
	}
	return &builder{
		opts:      opts,
		threshold: threshold,
		scale:     gpmf.Scale{Lat: 1.0, Lon: 1.0, Alt: 1.0},
	}
}

func (b *builder) emit(e Event) {
	if b.opts.Events != nil {
		b.opts.Events(e)
	}
}

func (b *builder) apply(rec gpmf.Record) {
	switch rec.Tag {
	case gpmf.TagScale:
		if s, ok := rec.Payload.(gpmf.Scale); ok {
			b.scale = s
			b.emit(Event{Kind: EventScaleChange, Tag: rec.Tag})
		}
	case gpmf.TagGPSTime:
		if t, ok := rec.Payload.(gpmf.GPSTime); ok {
			b.applyGPSTime(t.Time)
		}
	case gpmf.TagGPSFix:
		if code, ok := rec.Payload.(gpmf.FixCode); ok {
			b.applyFix(code)
		}
	case gpmf.TagGPS5:
		if g, ok := rec.Payload.(gpmf.GPS5); ok {
			for _, s := range g.Samples {
				b.applyGPS5Sample(s)
			}
		}
	case gpmf.TagSysTime:
		if st, ok := rec.Payload.(gpmf.SysTime); ok {
			b.applySysTime(st)
		}
	case gpmf.TagGPRI:
		if g, ok := rec.Payload.(gpmf.GPRI); ok {
			b.applyGPRI(g.Sample)
		}
	}
}

func (b *builder) applyGPSTime(t time.Time) {
	b.gpsTime = t
	if b.startTime == nil {
		start := t
		b.startTime = &start
		b.emit(Event{Kind: EventStartTime, Tag: gpmf.TagGPSTime})
	}
}

func (b *builder) applyFix(code gpmf.FixCode) {
	prev := b.fix
	if b.haveFix {
		b.fix = b.fixPending
	} else {
		// Nothing to delay against at stream start.
		b.fix = code
		b.haveFix = true
	}
	b.fixPending = code
	if b.fix != prev {
		b.emit(Event{Kind: EventFixChange, Tag: gpmf.TagGPSFix, Prev: float64(prev), New: float64(b.fix)})
	}
}

func (b *builder) applyGPS5Sample(s gpmf.GPS5Sample) {
	if !b.admitSample(s, gpmf.TagGPS5) {
		return
	}

	lat, lon, alt, ok := b.scaleSpatial(s)
	if !ok {
		b.stats.BadScale++
		b.emit(Event{Kind: EventBadScale, Tag: gpmf.TagGPS5})
		return
	}

	// Coordinate-jump filter. Comparing magnitudes means a hemisphere flip
	// at similar magnitude passes; this only targets obviously wrong jumps.
	if b.havePrev {
		if math.Abs(math.Abs(b.lastLat)-math.Abs(lat)) > b.threshold {
			b.emit(Event{Kind: EventGlitchLat, Tag: gpmf.TagGPS5, Prev: b.lastLat, New: lat})
			return
		}
		if math.Abs(math.Abs(b.lastLon)-math.Abs(lon)) > b.threshold {
			b.emit(Event{Kind: EventGlitchLon, Tag: gpmf.TagGPS5, Prev: b.lastLon, New: lon})
			return
		}
	}

	b.points = append(b.points, Point{
		Lat:   lat,
		Lon:   lon,
		Alt:   alt,
		Time:  b.gpsTime,
		Speed: s.Speed2D,
	})
	b.stats.OK++
	b.lastLat = lat
	b.lastLon = lon
	b.havePrev = true
}

// applySysTime scales the pair against the leading scale components and
// adopts it only when both scaled fields are non-zero.
func (b *builder) applySysTime(st gpmf.SysTime) {
	if b.scale.Lat == 0 || b.scale.Lon == 0 {
		b.emit(Event{Kind: EventBadScale, Tag: gpmf.TagSysTime})
		return
	}
	seconds := st.Seconds / b.scale.Lat
	millis := st.Millis / b.scale.Lon
	if seconds != 0 && millis != 0 {
		b.sysTime = gpmf.SysTime{Seconds: seconds, Millis: millis}
		b.haveSysTime = true
	}
}

// applyGPRI handles the alternate (Karma) dialect: a single sample timed by
// the system-time context. No coordinate-jump filtering and no participation
// in the fix delay beyond reading the currently active code.
func (b *builder) applyGPRI(s gpmf.GPS5Sample) {
	if !b.admitSample(s, gpmf.TagGPRI) {
		return
	}

	lat, lon, alt, ok := b.scaleSpatial(s)
	if !ok {
		b.stats.BadScale++
		b.emit(Event{Kind: EventBadScale, Tag: gpmf.TagGPRI})
		return
	}

	if !b.haveSysTime || b.sysTime.Seconds == 0 || b.sysTime.Millis == 0 {
		b.emit(Event{Kind: EventNoSysTime, Tag: gpmf.TagGPRI})
		return
	}

	b.points = append(b.points, Point{
		Lat:   lat,
		Lon:   lon,
		Alt:   alt,
		Time:  sysTimestamp(b.sysTime),
		Speed: s.Speed2D,
	})
	b.stats.OK++
}

// admitSample applies the empty-sample and fix-state checks shared by both
// dialects. It reports whether processing of the sample should continue.
func (b *builder) admitSample(s gpmf.GPS5Sample, tag string) bool {
	if s.Lat == 0 && s.Lon == 0 && s.Alt == 0 {
		b.stats.Empty++
		b.emit(Event{Kind: EventEmptySample, Tag: tag})
		return false
	}
	if b.haveFix && b.fix == NoFix {
		b.stats.BadFix++
		b.emit(Event{Kind: EventBadFix, Tag: tag})
		if b.opts.SkipBadFix {
			b.stats.BadFixSkip++
			b.emit(Event{Kind: EventBadFixSkip, Tag: tag})
			return false
		}
	}
	return true
}

// scaleSpatial divides the spatial fields by the active scale context.
// A zero divisor would propagate infinities into accepted output, so the
// sample is refused instead.
func (b *builder) scaleSpatial(s gpmf.GPS5Sample) (lat, lon, alt float64, ok bool) {
	if b.scale.Lat == 0 || b.scale.Lon == 0 || b.scale.Alt == 0 {
		return 0, 0, 0, false
	}
	return s.Lat / b.scale.Lat, s.Lon / b.scale.Lon, s.Alt / b.scale.Alt, true
}

// sysTimestamp interprets the scaled milliseconds field as Unix epoch
// seconds, which is what the Karma controller's SCAL reduces it to.
func sysTimestamp(st gpmf.SysTime) time.Time {
	sec := math.Floor(st.Millis)
	nsec := (st.Millis - sec) * float64(time.Second)
	return time.Unix(int64(sec), int64(nsec)).UTC()
}
