package main

import (
	"fmt"
	"sort"
	"strings"

	"gopro2gpx-ng/internal/gpmf"
)

type recordSummary struct {
	Records     int
	Opaque      int
	GPS5Samples int
	TagCounts   map[string]int
}

func summarizeRecords(recs []gpmf.Record) recordSummary {
	s := recordSummary{TagCounts: map[string]int{}}
	for _, r := range recs {
		s.Records++
		s.TagCounts[r.Tag]++
		if r.Payload == nil {
			s.Opaque++
		}
		if g, ok := r.Payload.(gpmf.GPS5); ok {
			s.GPS5Samples += len(g.Samples)
		}
	}
	return s
}

func formatRecordSummary(s recordSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "records: %d (opaque: %d)\n", s.Records, s.Opaque)
	fmt.Fprintf(&b, "gps5 samples: %d\n", s.GPS5Samples)

	tags := make([]string, 0, len(s.TagCounts))
	for tag := range s.TagCounts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(&b, "  %s %6d\n", tag, s.TagCounts[tag])
	}
	return b.String()
}
