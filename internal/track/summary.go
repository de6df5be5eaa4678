package track

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gopro2gpx-ng/internal/telemetry"
)

// Summary describes one run's accepted track.
type Summary struct {
	Points     int
	DistanceKm float64
	Duration   time.Duration
	MeanSpeed  float64
	MaxSpeed   float64
}

const earthRadiusM = 6371000.0

// Summarize computes path length, elapsed time and speed statistics over
// the accepted points. Duration requires timestamps on the first and last
// point and is zero otherwise.
func Summarize(points []telemetry.Point) Summary {
	s := Summary{Points: len(points)}
	if len(points) == 0 {
		return s
	}

	var distM float64
	speeds := make([]float64, 0, len(points))
	for i, p := range points {
		speeds = append(speeds, p.Speed)
		if i > 0 {
			prev := points[i-1]
			distM += haversineM(prev.Lat, prev.Lon, p.Lat, p.Lon)
		}
	}
	s.DistanceKm = distM / 1000.0
	s.MeanSpeed = stat.Mean(speeds, nil)
	s.MaxSpeed = floats.Max(speeds)

	first, last := points[0].Time, points[len(points)-1].Time
	if !first.IsZero() && !last.IsZero() && last.After(first) {
		s.Duration = last.Sub(first)
	}
	return s
}

func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180.0
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}
