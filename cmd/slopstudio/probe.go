package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/config"
	"github.com/kikiluvv/slopstudio/pkg/util"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [file]",
		Short: "Print natural duration and stream info of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			path := args[0]

			kind, err := clips.KindFromPath(path)
			if err != nil {
				return err
			}
			if !util.FileExists(path) {
				return fmt.Errorf("%s does not exist", path)
			}

			exec := newExecutor(cfg)
			if exec == nil {
				return fmt.Errorf("probe requires ffprobe")
			}
			info, err := exec.ProbeVideo(cmd.Context(), path)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"kind", kind.String()},
				{"duration", util.FormatDuration(info.Duration)},
			}
			if kind == clips.KindImage {
				rows[1][1] = fmt.Sprintf("none (defaults to %s)", util.FormatDuration(cfg.Timeline.DefaultImageDuration))
			}
			if info.HasVideo {
				rows = append(rows,
					[]string{"video", fmt.Sprintf("%s %dx%d", info.VideoCodec, info.Width, info.Height)},
					[]string{"fps", fmt.Sprintf("%.3f", info.FPS)})
			}
			if info.HasAudio {
				rows = append(rows, []string{"audio", info.AudioCodec})
			}
			if info.Bitrate > 0 {
				rows = append(rows, []string{"bitrate", fmt.Sprintf("%d kb/s", info.Bitrate/1000)})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
