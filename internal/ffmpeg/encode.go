package ffmpeg

import (
	"context"
	"fmt"
	"io"
)

// EncodeOptions describes a raw RGBA frame stream to be encoded
type EncodeOptions struct {
	Frames       io.Reader
	Width        int
	Height       int
	FPS          float64
	ScaleWidth   int
	ScaleHeight  int
	Output       string
	VideoCodec   string
	Preset       string
	CRF          int
	ProgressFunc ProgressFunc
}

// EncodeFrames reads packed RGBA frames from opts.Frames until EOF and
// encodes them into opts.Output
func (e *Executor) EncodeFrames(ctx context.Context, opts EncodeOptions) error {
	if err := validateEncodeOptions(opts); err != nil {
		return fmt.Errorf("invalid encode options: %w", err)
	}

	e.logger.Info().
		Str("output", opts.Output).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Float64("fps", opts.FPS).
		Msg("encoding frames")

	if err := e.Run(ctx, RunOptions{
		Args:            encodeArgs(opts),
		Stdin:           opts.Frames,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("encode output")
		},
	}); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("encode completed")
	return nil
}

func encodeArgs(opts EncodeOptions) []string {
	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	preset := opts.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	crf := opts.CRF
	if crf == 0 {
		crf = DefaultCRF
	}

	// yuv420p needs even dimensions
	filter := NewFilterBuilder().Scale(opts.ScaleWidth, opts.ScaleHeight).EvenDimensions().Build()

	return []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%.3f", opts.FPS),
		"-i", "-",
		"-vf", filter,
		"-c:v", codec,
		"-preset", preset,
		"-crf", fmt.Sprintf("%d", crf),
		"-pix_fmt", "yuv420p",
		opts.Output,
	}
}

func validateEncodeOptions(opts EncodeOptions) error {
	if opts.Frames == nil {
		return fmt.Errorf("frame source is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return fmt.Errorf("FPS must be positive")
	}
	if opts.ScaleWidth < 0 || opts.ScaleHeight < 0 || (opts.ScaleWidth == 0) != (opts.ScaleHeight == 0) {
		return fmt.Errorf("scale must set both width and height, got %dx%d", opts.ScaleWidth, opts.ScaleHeight)
	}
	if opts.CRF < 0 || opts.CRF > 51 {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	return nil
}
