// Package media shells out to ffmpeg/ffprobe for the handful of operations
// the pipeline needs: duration probing, single-frame capture, and audio
// extraction. The binaries are located on PATH at call time so a deployment
// without them degrades to a clean unavailability error.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"govwatcher/internal/errkind"
)

// Tools wraps the external binaries. The zero value uses the standard names;
// tests override them with stubs.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// NewTools returns the default binary names.
func NewTools() *Tools {
	return &Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
}

// Available reports whether ffmpeg responds to -version.
func (t *Tools) Available(ctx context.Context) bool {
	return exec.CommandContext(ctx, t.FFmpeg, "-version").Run() == nil
}

// Duration probes the stream and returns its length in seconds.
func (t *Tools) Duration(ctx context.Context, url string) (float64, error) {
	out, err := exec.CommandContext(ctx, t.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		url,
	).Output()
	if err != nil {
		return 0, classifyExecErr(err, "probe duration")
	}
	return ParseDuration(out)
}

// ParseDuration extracts the duration from ffprobe's JSON output. ffprobe
// reports it as a decimal string inside the format object.
func ParseDuration(probeJSON []byte) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(probeJSON, &probe); err != nil {
		return 0, errkind.Wrap(errkind.Parse, fmt.Errorf("decode probe output: %w", err))
	}
	if probe.Format.Duration == "" {
		return 0, errkind.New(errkind.Parse, "probe output carries no duration")
	}
	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, errkind.Wrap(errkind.Parse, fmt.Errorf("parse duration %q: %w", probe.Format.Duration, err))
	}
	if seconds <= 0 {
		return 0, errkind.New(errkind.Parse, "non-positive duration %v", seconds)
	}
	return seconds, nil
}

// CaptureFrame grabs one frame at the given offset into outFile.
func (t *Tools) CaptureFrame(ctx context.Context, url string, offset float64, outFile string) error {
	err := exec.CommandContext(ctx, t.FFmpeg,
		"-ss", formatOffset(offset),
		"-i", url,
		"-vframes", "1",
		"-q:v", "2",
		outFile,
		"-y",
	).Run()
	if err != nil {
		return classifyExecErr(err, fmt.Sprintf("capture frame at %s", formatOffset(offset)))
	}
	return nil
}

// ExtractAudio writes a 16 kHz mono PCM WAV, the input format the
// transcription endpoint handles best.
func (t *Tools) ExtractAudio(ctx context.Context, url, outFile string) error {
	err := exec.CommandContext(ctx, t.FFmpeg,
		"-i", url,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outFile,
		"-y",
	).Run()
	if err != nil {
		return classifyExecErr(err, "extract audio")
	}
	return nil
}

func formatOffset(offset float64) string {
	return strconv.FormatFloat(offset, 'f', -1, 64)
}

// classifyExecErr maps a missing binary to Unavailable and everything else
// to Transient: the stream may simply not be up yet.
func classifyExecErr(err error, op string) error {
	if _, ok := err.(*exec.Error); ok {
		return errkind.Wrap(errkind.Unavailable, fmt.Errorf("%s: %w", op, err))
	}
	return errkind.Wrap(errkind.Transient, fmt.Errorf("%s: %w", op, err))
}
