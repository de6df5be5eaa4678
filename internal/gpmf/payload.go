package gpmf

import (
	"encoding/binary"
	"strings"
	"time"
)

// decodeRecord turns a leaf KLV item into a typed Record. Items whose
// payload does not match the expected shape degrade to opaque records; the
// telemetry builder ignores those, which is the required behavior for
// malformed data.
func decodeRecord(item klvItem) Record {
	rec := Record{Tag: item.fourCC}

	switch item.fourCC {
	case TagScale:
		if s, ok := decodeScale(item); ok {
			rec.Payload = s
		}
	case TagGPSTime:
		if t, ok := decodeGPSTime(item.payload); ok {
			rec.Payload = GPSTime{Time: t}
		}
	case TagGPSFix:
		if len(item.payload) >= 4 {
			rec.Payload = FixCode(binary.BigEndian.Uint32(item.payload[:4]))
		}
	case TagGPS5:
		if g, ok := decodeGPS5(item); ok {
			rec.Payload = g
		}
	case TagSysTime:
		if st, ok := decodeSysTime(item.payload); ok {
			rec.Payload = st
		}
	case TagGPRI:
		if s, ok := decodeSample(item.payload); ok {
			rec.Payload = GPRI{Sample: s}
		}
	}
	return rec
}

// decodeScale reads the leading three divisors. GPS5-era streams carry five
// (the last two scale the speed fields); the scale context tracked here is
// the spatial triple, so extras are ignored.
func decodeScale(item klvItem) (Scale, bool) {
	vals := decodeSignedInts(item)
	if len(vals) < 3 {
		return Scale{}, false
	}
	return Scale{Lat: vals[0], Lon: vals[1], Alt: vals[2]}, true
}

func decodeSignedInts(item klvItem) []float64 {
	var width int
	switch item.structSize {
	case 2:
		width = 2
	case 4:
		width = 4
	default:
		return nil
	}
	p := item.payload
	vals := make([]float64, 0, len(p)/width)
	for len(p) >= width {
		switch width {
		case 2:
			vals = append(vals, float64(int16(binary.BigEndian.Uint16(p))))
		case 4:
			vals = append(vals, float64(int32(binary.BigEndian.Uint32(p))))
		}
		p = p[width:]
	}
	return vals
}

// GPSU payload is ASCII "yymmddhhmmss.sss" in UTC.
func decodeGPSTime(payload []byte) (time.Time, bool) {
	s := strings.TrimRight(string(payload), "\x00 ")
	for _, layout := range []string{"060102150405.000", "060102150405"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const gps5SampleSize = 20 // five big-endian int32 fields

func decodeGPS5(item klvItem) (GPS5, bool) {
	if item.structSize != gps5SampleSize || len(item.payload) < gps5SampleSize {
		return GPS5{}, false
	}
	p := item.payload
	g := GPS5{Samples: make([]GPS5Sample, 0, len(p)/gps5SampleSize)}
	for len(p) >= gps5SampleSize {
		s, _ := decodeSample(p)
		g.Samples = append(g.Samples, s)
		p = p[gps5SampleSize:]
	}
	return g, true
}

// decodeSample reads the five-field group shared by GPS5 and GPRI. GPRI
// payloads may carry trailing device fields; those are ignored.
func decodeSample(payload []byte) (GPS5Sample, bool) {
	if len(payload) < gps5SampleSize {
		return GPS5Sample{}, false
	}
	i32 := func(off int) float64 {
		return float64(int32(binary.BigEndian.Uint32(payload[off:])))
	}
	return GPS5Sample{
		Lat:     i32(0),
		Lon:     i32(4),
		Alt:     i32(8),
		Speed2D: i32(12),
		Speed3D: i32(16),
	}, true
}

// SYST is a (seconds, milliseconds) pair: two uint32 on older firmware, two
// uint64 on the Karma controller.
func decodeSysTime(payload []byte) (SysTime, bool) {
	switch len(payload) {
	case 8:
		return SysTime{
			Seconds: float64(binary.BigEndian.Uint32(payload[0:4])),
			Millis:  float64(binary.BigEndian.Uint32(payload[4:8])),
		}, true
	case 16:
		return SysTime{
			Seconds: float64(binary.BigEndian.Uint64(payload[0:8])),
			Millis:  float64(binary.BigEndian.Uint64(payload[8:16])),
		}, true
	default:
		return SysTime{}, false
	}
}
