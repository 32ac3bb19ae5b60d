package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"unspool/internal/manifest"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "List published titles under the output root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			titles, err := manifest.ListTitles(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			if len(titles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No published titles")
				return nil
			}

			rows := make([][]string, 0, len(titles))
			for _, t := range titles {
				rows = append(rows, []string{t.ID, t.Playlist})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Title", "Playlist"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newTracksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <title-id>",
		Short: "List the audio and subtitle tracks of a published title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			titleDir := filepath.Join(cfg.Paths.OutputDir, filepath.Base(args[0]))
			if info, err := os.Stat(titleDir); err != nil || !info.IsDir() {
				return fmt.Errorf("title %q not found under %s", args[0], cfg.Paths.OutputDir)
			}

			tracks, err := manifest.SiblingTracks(titleDir)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tracks.Audio)+len(tracks.Subtitles))
			for _, name := range tracks.Audio {
				rows = append(rows, []string{"audio", name})
			}
			for _, name := range tracks.Subtitles {
				rows = append(rows, []string{"subtitle", name})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sibling tracks")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "File"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
