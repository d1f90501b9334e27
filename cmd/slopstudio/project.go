package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/config"
	"github.com/kikiluvv/slopstudio/internal/ffmpeg"
	"github.com/kikiluvv/slopstudio/internal/manifest"
)

// newExecutor resolves ffmpeg from config. A missing binary is reported but
// not fatal: clips that need it fail to load and are skipped.
func newExecutor(cfg *config.Config) *ffmpeg.Executor {
	exec, err := ffmpeg.New(log.Logger, ffmpeg.Options{
		BinaryPath: cfg.FFmpeg.BinaryPath,
		ProbePath:  cfg.FFmpeg.ProbePath,
		Threads:    cfg.FFmpeg.Threads,
	})
	if err != nil {
		log.Warn().Err(err).Msg("ffmpeg unavailable, video clips will not decode")
		return nil
	}
	return exec
}

// durationResolver probes timed sources and gives stills the default length
func durationResolver(exec *ffmpeg.Executor, imageDuration time.Duration) manifest.DurationFunc {
	return func(ctx context.Context, kind clips.Kind, source string) (time.Duration, error) {
		if !kind.Timed() {
			return imageDuration, nil
		}
		if exec == nil {
			return 0, fmt.Errorf("duration of %s unknown and ffprobe is unavailable", source)
		}
		info, err := exec.ProbeVideo(ctx, source)
		if err != nil {
			return 0, err
		}
		return info.Duration, nil
	}
}

// loadProject builds a clip store from a manifest file
func loadProject(ctx context.Context, cfg *config.Config, exec *ffmpeg.Executor, path string) (*clips.Store, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}

	store := clips.NewStore(m.Name, clips.WithMinDuration(cfg.Timeline.MinClipDuration))
	if _, err := m.Apply(ctx, store, durationResolver(exec, cfg.Timeline.DefaultImageDuration)); err != nil {
		return nil, fmt.Errorf("apply manifest %s: %w", path, err)
	}

	log.Info().
		Str("project", store.Name()).
		Int("clips", store.Len()).
		Dur("duration", store.Duration()).
		Msg("project loaded")
	return store, nil
}

func componentLogger(name string) *zerolog.Logger {
	l := log.Logger.With().Str("component", name).Logger()
	return &l
}
