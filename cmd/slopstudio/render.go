package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/compositor"
	"github.com/kikiluvv/slopstudio/internal/config"
	"github.com/kikiluvv/slopstudio/internal/ffmpeg"
	"github.com/kikiluvv/slopstudio/internal/media"
	"github.com/kikiluvv/slopstudio/internal/playback"
)

func newRenderCmd() *cobra.Command {
	var (
		output string
		fps    float64
		scale  string
	)

	cmd := &cobra.Command{
		Use:   "render [manifest]",
		Short: "Export the composited timeline to a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			exec := newExecutor(cfg)
			if exec == nil {
				return fmt.Errorf("render requires ffmpeg")
			}
			store, err := loadProject(ctx, cfg, exec, args[0])
			if err != nil {
				return err
			}
			if store.Duration() <= 0 {
				return fmt.Errorf("project %s is empty", store.Name())
			}
			if fps <= 0 {
				fps = cfg.Playback.FrameRate
			}
			scaleW, scaleH, err := parseSize(scale)
			if err != nil {
				return fmt.Errorf("invalid --scale: %w", err)
			}

			bg, err := compositor.ParseHexColor(cfg.Surface.Background)
			if err != nil {
				return err
			}
			surface := compositor.NewRGBASurface(cfg.Surface.Width, cfg.Surface.Height, bg)

			factory := &media.DefaultFactory{
				Executor:       exec,
				MaxFrameWidth:  cfg.Surface.Width,
				MaxFrameHeight: cfg.Surface.Height,
				Options: media.Options{
					Context: ctx,
					Clock:   media.NewManualClock(time.Now()),
					Logger:  componentLogger("media"),
				},
			}
			engine := playback.NewEngine(store, media.NewRegistry(factory, log.Logger), surface, playback.EngineOptions{
				Sync: playback.SyncOptions{
					DriftThreshold: cfg.Playback.DriftThreshold,
					PreloadWindow:  cfg.Playback.PreloadWindow,
				},
				Logger: log.Logger,
			})
			defer engine.Close()

			start := time.Now()
			err = renderProject(ctx, exec, engine, surface, store, ffmpeg.EncodeOptions{
				Width:       cfg.Surface.Width,
				Height:      cfg.Surface.Height,
				FPS:         fps,
				ScaleWidth:  scaleW,
				ScaleHeight: scaleH,
				Output:      output,
				Preset:      cfg.FFmpeg.Preset,
				CRF:         cfg.FFmpeg.CRF,
				ProgressFunc: func(p *ffmpeg.Progress) {
					log.Debug().Int("frame", p.Frame).Str("time", p.Time).Str("speed", p.Speed).Msg("encoding")
				},
			})
			if err != nil {
				return err
			}

			log.Info().
				Str("output", output).
				Dur("duration", store.Duration()).
				Dur("took", time.Since(start)).
				Msg("render complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "out.mp4", "output video path")
	cmd.Flags().Float64Var(&fps, "fps", 0, "output frame rate (default: playback.frame_rate)")
	cmd.Flags().StringVar(&scale, "scale", "", "scale the export to WxH (default: surface size)")
	return cmd
}

// parseSize reads WxH; an empty string means no scaling
func parseSize(s string) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("expected WxH, got %q", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size must be positive, got %dx%d", w, h)
	}
	return w, h, nil
}

// renderProject steps the engine through every frame time and streams the
// surface into ffmpeg
func renderProject(ctx context.Context, exec *ffmpeg.Executor, engine *playback.Engine, surface *compositor.RGBASurface, store *clips.Store, opts ffmpeg.EncodeOptions) error {
	frames := int(math.Ceil(store.Duration().Seconds() * opts.FPS))

	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < frames; i++ {
			at := time.Duration(float64(i) / opts.FPS * float64(time.Second))
			if _, err := engine.RenderFrame(ctx, at); err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := pw.Write(surface.Pix()); err != nil {
				return
			}
			if i%int(math.Max(opts.FPS, 1)) == 0 {
				log.Debug().Int("frame", i).Int("total", frames).Msg("rendered")
			}
		}
		pw.Close()
	}()

	opts.Frames = pr
	err := exec.EncodeFrames(ctx, opts)
	// unblock the producer if ffmpeg stopped reading early
	pr.CloseWithError(io.ErrClosedPipe)
	<-done
	return err
}
