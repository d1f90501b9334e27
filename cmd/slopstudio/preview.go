package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/slopstudio/internal/compositor"
	"github.com/kikiluvv/slopstudio/internal/config"
	"github.com/kikiluvv/slopstudio/internal/editor"
	"github.com/kikiluvv/slopstudio/internal/gui"
	"github.com/kikiluvv/slopstudio/internal/media"
	"github.com/kikiluvv/slopstudio/internal/playback"
)

func newPreviewCmd() *cobra.Command {
	var muted bool

	cmd := &cobra.Command{
		Use:   "preview [manifest]",
		Short: "Open a preview window for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			exec := newExecutor(cfg)
			store, err := loadProject(ctx, cfg, exec, args[0])
			if err != nil {
				return err
			}

			bg, err := compositor.ParseHexColor(cfg.Surface.Background)
			if err != nil {
				return err
			}
			surface := compositor.NewRGBASurface(cfg.Surface.Width, cfg.Surface.Height, bg)

			var output *media.AudioOutput
			if cfg.Audio.Enabled {
				output = media.NewAudioOutput(cfg.Audio.SampleRate, cfg.Audio.Buffer)
				defer output.Close()
			}

			factory := &media.DefaultFactory{
				Executor:       exec,
				Output:         output,
				MaxFrameWidth:  cfg.Surface.Width,
				MaxFrameHeight: cfg.Surface.Height,
				Options: media.Options{
					Context: ctx,
					Clock:   media.SystemClock{},
					Logger:  componentLogger("media"),
				},
			}
			registry := media.NewRegistry(factory, log.Logger)

			engine := playback.NewEngine(store, registry, surface, playback.EngineOptions{
				Sync: playback.SyncOptions{
					DriftThreshold: cfg.Playback.DriftThreshold,
					PreloadWindow:  cfg.Playback.PreloadWindow,
				},
				Dispatch: gui.Dispatch,
				Logger:   log.Logger,
			})
			defer engine.Close()
			engine.Controller().SetMuted(muted)

			ed := editor.New(store, engine.Clock(), editor.Options{
				PixelsPerSecond:    cfg.Timeline.PixelsPerSecond,
				MinPixelsPerSecond: cfg.Timeline.MinPixelsPerSecond,
				MaxPixelsPerSecond: cfg.Timeline.MaxPixelsPerSecond,
				Logger:             log.Logger,
			})

			var prober editor.Prober
			if exec != nil {
				prober = exec
			}
			uploader := editor.NewLocalUploader(cfg.WorkDir, prober, cfg.Timeline.DefaultImageDuration, log.Logger)

			return gui.RunPreview(ctx, gui.NewApp(), engine, ed, gui.PreviewOptions{
				Title:     "slopstudio - " + store.Name(),
				FrameRate: cfg.Playback.FrameRate,
				Surface:   surface,
				Uploader:  uploader,
				Logger:    log.Logger,
			})
		},
	}

	cmd.Flags().BoolVar(&muted, "mute", false, "start with audio muted")
	return cmd
}
