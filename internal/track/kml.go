package track

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"gopro2gpx-ng/internal/telemetry"
)

type kmlFile struct {
	XMLName  xml.Name    `xml:"kml"`
	Xmlns    string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

type kmlDocument struct {
	Name      string       `xml:"name"`
	Placemark kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name       string        `xml:"name"`
	LineString kmlLineString `xml:"LineString"`
}

type kmlLineString struct {
	Tessellate   int    `xml:"tessellate"`
	AltitudeMode string `xml:"altitudeMode"`
	Coordinates  string `xml:"coordinates"`
}

// WriteKML writes the path-overlay file: one LineString through every
// accepted point, in lon,lat,alt order as KML requires.
func WriteKML(w io.Writer, points []telemetry.Point, name string) error {
	var coords strings.Builder
	for _, p := range points {
		fmt.Fprintf(&coords, "%f,%f,%f\n", p.Lon, p.Lat, p.Alt)
	}

	k := kmlFile{
		Xmlns: "http://www.opengis.net/kml/2.2",
		Document: kmlDocument{
			Name: name,
			Placemark: kmlPlacemark{
				Name: name,
				LineString: kmlLineString{
					Tessellate:   1,
					AltitudeMode: "clampToGround",
					Coordinates:  coords.String(),
				},
			},
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(k); err != nil {
		return fmt.Errorf("kml encode: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
