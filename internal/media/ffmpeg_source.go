package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kikiluvv/slopstudio/internal/ffmpeg"
)

// FFmpegSource extracts frames with the ffmpeg executor
type FFmpegSource struct {
	exec      *ffmpeg.Executor
	path      string
	maxWidth  int
	maxHeight int
}

// NewFFmpegSource creates a source for path. Frames are shrunk to fit
// maxWidth x maxHeight when both are positive.
func NewFFmpegSource(exec *ffmpeg.Executor, path string, maxWidth, maxHeight int) *FFmpegSource {
	return &FFmpegSource{exec: exec, path: path, maxWidth: maxWidth, maxHeight: maxHeight}
}

func (s *FFmpegSource) Probe(ctx context.Context) (SourceInfo, error) {
	info, err := s.exec.ProbeVideo(ctx, s.path)
	if err != nil {
		return SourceInfo{}, err
	}
	if !info.HasVideo {
		return SourceInfo{}, fmt.Errorf("%s has no video stream", s.path)
	}
	return SourceInfo{
		Duration: info.Duration,
		Width:    info.Width,
		Height:   info.Height,
		FPS:      info.FPS,
	}, nil
}

func (s *FFmpegSource) FrameAt(ctx context.Context, at time.Duration) (image.Image, error) {
	return s.exec.FrameAt(ctx, s.path, at, s.maxWidth, s.maxHeight)
}

var errNoDecoder = errors.New("ffmpeg is not available")

// unavailableSource stands in when no executor could be created
type unavailableSource struct{}

func (unavailableSource) Probe(context.Context) (SourceInfo, error) {
	return SourceInfo{}, errNoDecoder
}

func (unavailableSource) FrameAt(context.Context, time.Duration) (image.Image, error) {
	return nil, errNoDecoder
}
