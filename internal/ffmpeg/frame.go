package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/kikiluvv/slopstudio/pkg/util"
)

// FrameAt decodes the single frame shown at offset at of input. A positive
// maxWidth and maxHeight shrink the frame to fit that box before decoding.
func (e *Executor) FrameAt(ctx context.Context, input string, at time.Duration, maxWidth, maxHeight int) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if at < 0 {
		at = 0
	}

	args := []string{
		"-ss", util.FormatDuration(at),
		"-i", input,
		"-frames:v", "1",
	}
	if filter := NewFilterBuilder().FitWithin(maxWidth, maxHeight).Build(); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args, "-f", "image2pipe", "-vcodec", "png", "-")

	var buf bytes.Buffer
	opts := RunOptions{
		Args:   args,
		Stdout: &buf,
		Quiet:  true,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return nil, fmt.Errorf("frame extraction failed: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("no frame at %s", util.FormatDuration(at))
	}

	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return img, nil
}
