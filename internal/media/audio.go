// Package media extracts audio tracks from uploaded lesson videos.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// AudioExtractor extracts an MP3 audio track from a video container using
// an external ffmpeg binary.
type AudioExtractor struct {
	ffmpegPath string
}

// NewAudioExtractor creates an AudioExtractor. An empty path falls back to
// "ffmpeg" on PATH.
func NewAudioExtractor(ffmpegPath string) *AudioExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &AudioExtractor{ffmpegPath: ffmpegPath}
}

// ExtractAudio writes the video's audio track next to the video file as
// "<video>.mp3" and returns the audio path. An unreadable container or
// codec error fails the extraction; no partial output file is left behind.
func (e *AudioExtractor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not readable: %w", err)
	}

	audioPath := videoPath + ".mp3"

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-y",
		audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(audioPath)
		detail := lastLine(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("ffmpeg failed for %s: %w (%s)", filepath.Base(videoPath), err, detail)
		}
		return "", fmt.Errorf("ffmpeg failed for %s: %w", filepath.Base(videoPath), err)
	}

	return audioPath, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
