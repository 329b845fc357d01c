// Package thumbnail extracts a still frame from a video with ffmpeg.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultOffset is the position of the extracted frame.
const DefaultOffset = "00:00:02"

// Generator writes thumbnails into Dir.
type Generator struct {
	FFmpeg string // Binary name or path. Empty means "ffmpeg".
	Dir    string
	Offset string // Empty means DefaultOffset.
}

// Path returns where the thumbnail for name is written.
func (g *Generator) Path(name string) string {
	return filepath.Join(g.Dir, name+"_thumbnail.jpg")
}

// Args returns the ffmpeg command line for one extraction.
func (g *Generator) Args(videoPath, name string) []string {
	bin := g.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	offset := g.Offset
	if offset == "" {
		offset = DefaultOffset
	}
	return []string{bin, "-i", videoPath, "-ss", offset, "-vframes", "1", g.Path(name), "-y"}
}

// Generate extracts one frame of videoPath and returns the thumbnail path.
// ffmpeg's stderr is captured and included in the error on failure.
func (g *Generator) Generate(ctx context.Context, videoPath, name string) (string, error) {
	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return "", fmt.Errorf("create thumbnail folder: %w", err)
	}
	args := g.Args(videoPath, name)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg %s: %w: %s", videoPath, err, lastLine(stderr.String()))
	}
	return g.Path(name), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
