package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/slopstudio/internal/clips"
	"github.com/kikiluvv/slopstudio/internal/config"
	"github.com/kikiluvv/slopstudio/internal/playback"
	"github.com/kikiluvv/slopstudio/pkg/util"
)

func newInspectCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "inspect [manifest]",
		Short: "Show clips and which of them are active at a playhead position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			playhead, err := util.ParseTimestamp(at)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}

			store, err := loadProject(ctx, cfg, newExecutor(cfg), args[0])
			if err != nil {
				return err
			}

			clock := playback.NewClock(store)
			clock.Seek(playhead)
			acts := playback.Evaluate(store.Clips(), clock.Current())

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s / %s\n", store.Name(),
				util.FormatTimecode(clock.Current()), util.FormatTimecode(store.Duration()))
			fmt.Fprintln(cmd.OutOrStdout(), renderActivations(acts))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "0", "playhead position (seconds, MM:SS or HH:MM:SS.mmm)")
	return cmd
}

func renderActivations(acts []playback.Activation) string {
	headers := []string{"#", "Name", "Kind", "Start", "End", "Volume", "Active", "Local"}
	rows := make([][]string, 0, len(acts))
	for i, a := range acts {
		volume := "-"
		if a.Clip.Kind.Audible() {
			volume = fmt.Sprintf("%.2f", a.Clip.Volume)
		}
		active, local := "", ""
		if a.Active {
			active = "yes"
			local = util.FormatDuration(a.LocalTime)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			displayName(a.Clip),
			a.Clip.Kind.String(),
			util.FormatDuration(a.Clip.Start),
			util.FormatDuration(a.Clip.End()),
			volume,
			active,
			local,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight})
}

func displayName(c clips.Clip) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Source
}
