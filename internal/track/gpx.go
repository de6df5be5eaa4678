// Package track serializes accepted position points as GPX and KML files
// and computes the per-run track summary.
package track

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"gopro2gpx-ng/internal/telemetry"
)

const gpxTimeLayout = time.RFC3339

type gpxFile struct {
	XMLName  xml.Name     `xml:"gpx"`
	Xmlns    string       `xml:"xmlns,attr"`
	Creator  string       `xml:"creator,attr"`
	Version  string       `xml:"version,attr"`
	Metadata *gpxMetadata `xml:"metadata,omitempty"`
	Track    gpxTrack     `xml:"trk"`
}

type gpxMetadata struct {
	Time string `xml:"time"`
}

type gpxTrack struct {
	Name    string     `xml:"name,omitempty"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat   float64 `xml:"lat,attr"`
	Lon   float64 `xml:"lon,attr"`
	Ele   float64 `xml:"ele"`
	Time  string  `xml:"time,omitempty"`
	Speed float64 `xml:"extensions>speed,omitempty"`
}

// WriteGPX writes the timestamped track file. A nil start time omits the
// metadata block; points with a zero timestamp omit their <time> element.
func WriteGPX(w io.Writer, points []telemetry.Point, startTime *time.Time, name string) error {
	g := gpxFile{
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Creator: "gopro2gpx-ng",
		Version: "1.1",
		Track:   gpxTrack{Name: name},
	}
	if startTime != nil {
		g.Metadata = &gpxMetadata{Time: startTime.UTC().Format(gpxTimeLayout)}
	}
	g.Track.Segment.Points = make([]gpxPoint, 0, len(points))
	for _, p := range points {
		gp := gpxPoint{Lat: p.Lat, Lon: p.Lon, Ele: p.Alt, Speed: p.Speed}
		if !p.Time.IsZero() {
			gp.Time = p.Time.UTC().Format(gpxTimeLayout)
		}
		g.Track.Segment.Points = append(g.Track.Segment.Points, gp)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("gpx encode: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
