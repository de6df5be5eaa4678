// Package extract pulls the raw GPMF metadata track out of a camera MP4
// using ffprobe (stream discovery) and ffmpeg (stream copy).
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

type Config struct {
	FFmpegPath  string
	FFprobePath string
}

// gpmdTag is the codec tag GoPro firmware assigns to the metadata stream.
const gpmdTag = "gpmd"

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	Index          int    `json:"index"`
	CodecType      string `json:"codec_type"`
	CodecTagString string `json:"codec_tag_string"`
}

// Probe locates the GPMF metadata stream inside a media file and returns
// its stream index.
func Probe(ctx context.Context, ffprobePath, mediaPath string) (int, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		mediaPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return 0, commandErr("ffprobe", err, &stderr)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("ffprobe output decode: %w", err)
	}
	return findMetadataStream(probe.Streams)
}

func findMetadataStream(streams []ffprobeStream) (int, error) {
	for _, s := range streams {
		if s.CodecTagString == gpmdTag {
			return s.Index, nil
		}
	}
	return 0, fmt.Errorf("no %s metadata stream found", gpmdTag)
}

// MetadataTrack extracts the raw GPMF bytes of the metadata stream. The
// stream is copied unmodified to stdout; no temp files are involved.
func MetadataTrack(ctx context.Context, cfg Config, mediaPath string) ([]byte, error) {
	idx, err := Probe(ctx, cfg.FFprobePath, mediaPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath,
		"-v", "error",
		"-i", mediaPath,
		"-codec", "copy",
		"-map", fmt.Sprintf("0:%d", idx),
		"-f", "rawvideo",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, commandErr("ffmpeg", err, &stderr)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no metadata bytes for %s", mediaPath)
	}
	return stdout.Bytes(), nil
}

func commandErr(name string, err error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("%s: %w: %s", name, err, msg)
}
