package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Transcoder converts a media file into another container or codec.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
}

// FFmpeg shells out to the ffmpeg binary at Path.
type FFmpeg struct {
	Path   string
	Logger *zap.Logger
}

var _ Transcoder = (*FFmpeg)(nil)

func NewFFmpeg(path string, logger *zap.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpeg{Path: path, Logger: logger}
}

// Transcode re-encodes src as AAC audio in an MP4 container at dst,
// overwriting dst if it exists.
func (f *FFmpeg) Transcode(ctx context.Context, src, dst string) error {
	args := []string{"-y", "-i", src, "-vn", "-c:a", "aac", "-b:a", "128k", dst}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.Path, args...)
	cmd.Stderr = &stderr

	f.Logger.Debug("transcode media", zap.String("src", src), zap.String("dst", dst))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s -> %s: %w: %s", filepath.Base(src), filepath.Base(dst), err, lastLine(stderr.String()))
	}
	return nil
}

// SwapExt returns path with its extension replaced by ext (".mp4").
func SwapExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
