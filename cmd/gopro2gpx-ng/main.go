package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"gopro2gpx-ng/internal/config"
	"gopro2gpx-ng/internal/extract"
	"gopro2gpx-ng/internal/gpmf"
	"gopro2gpx-ng/internal/telemetry"
	"gopro2gpx-ng/internal/track"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: gopro2gpx-ng [flags] <files...> <outputfile>\n")
	fmt.Fprintf(os.Stderr, "       gopro2gpx-ng --summary [flags] <files...>\n\n")
	fmt.Fprintf(os.Stderr, "Writes <outputfile> (GPX track) and <outputfile>.kml (path overlay).\n\n")
	pflag.PrintDefaults()
}

func main() {
	var (
		configPath string
		binary     bool
		skip       bool
		summary    bool
		verbose    int
	)
	pflag.StringVar(&configPath, "config", "", "path to YAML config (optional)")
	pflag.BoolVarP(&binary, "binary", "b", false, "read raw GPMF dumps instead of MP4 files")
	pflag.BoolVarP(&skip, "skip", "s", false, "skip points recorded without a GPS fix")
	pflag.BoolVar(&summary, "summary", false, "print per-tag record counts, write no track files")
	pflag.CountVarP(&verbose, "verbose", "v", "increase output verbosity")
	pflag.Usage = usage
	pflag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}
	if pflag.CommandLine.Changed("skip") {
		cfg.Filter.SkipBadFix = skip
	}

	args := pflag.Args()
	var files []string
	var outPath string
	if summary {
		if len(args) < 1 {
			usage()
			os.Exit(2)
		}
		files = args
	} else {
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		files = args[:len(args)-1]
		outPath = args[len(args)-1]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := telemetry.Options{
		SkipBadFix:         cfg.Filter.SkipBadFix,
		GlitchThresholdDeg: cfg.Filter.GlitchThresholdDeg,
	}
	if verbose >= 1 {
		opts.Events = func(e telemetry.Event) {
			log.Printf("event: %s", e)
		}
	}

	var points []telemetry.Point
	var startTime *time.Time
	for _, file := range files {
		recs, err := loadRecords(ctx, cfg, file, binary)
		if err != nil {
			log.Fatalf("%s: %v", file, err)
		}
		if verbose >= 2 {
			for _, r := range recs {
				log.Printf("record: %s", r)
			}
		}

		if summary {
			fmt.Printf("%s\n%s", file, formatRecordSummary(summarizeRecords(recs)))
			continue
		}

		res := telemetry.Build(recs, opts)
		printStats(file, res.Stats)
		if startTime == nil {
			startTime = res.StartTime
		}
		points = append(points, res.Points...)
	}
	if summary {
		return
	}

	// Writing an empty track helps nobody; bail before touching any output file.
	if len(points) == 0 {
		log.Fatalf("no GPS points in input, not writing %q", outPath)
	}

	if err := writeOutputs(outPath, cfg.Track.Name, points, startTime); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	printTrackSummary(track.Summarize(points))
	log.Printf("wrote %s and %s.kml", outPath, outPath)
}

func loadRecords(ctx context.Context, cfg config.Config, path string, binary bool) ([]gpmf.Record, error) {
	var raw []byte
	var err error
	if binary {
		raw, err = os.ReadFile(path)
	} else {
		ec := extract.Config{FFmpegPath: cfg.Tools.FFmpegPath, FFprobePath: cfg.Tools.FFprobePath}
		raw, err = extract.MetadataTrack(ctx, ec, path)
	}
	if err != nil {
		return nil, err
	}
	return gpmf.Parse(raw)
}

func writeOutputs(path, name string, points []telemetry.Point, startTime *time.Time) error {
	if err := writeFile(path+".kml", func(w io.Writer) error {
		return track.WriteKML(w, points, name)
	}); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return track.WriteGPX(w, points, startTime, name)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printStats(file string, s telemetry.Stats) {
	fmt.Printf("-- stats: %s\n", file)
	fmt.Printf("- ok:        %5d\n", s.OK)
	fmt.Printf("- bad fix:   %5d (skipped: %d)\n", s.BadFix, s.BadFixSkip)
	fmt.Printf("- empty:     %5d\n", s.Empty)
	fmt.Printf("- bad scale: %5d\n", s.BadScale)
	fmt.Printf("- total:     %5d\n", s.Total())
}

func printTrackSummary(s track.Summary) {
	fmt.Printf("-- track\n")
	fmt.Printf("- points:    %5d\n", s.Points)
	fmt.Printf("- distance:  %8.2f km\n", s.DistanceKm)
	if s.Duration > 0 {
		fmt.Printf("- duration:  %s\n", s.Duration.Round(time.Second))
	}
	fmt.Printf("- speed:     mean %.1f max %.1f\n", s.MeanSpeed, s.MaxSpeed)
}
