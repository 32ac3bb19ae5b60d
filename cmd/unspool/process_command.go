package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"unspool/internal/config"
	"unspool/internal/logging"
	"unspool/internal/media/inspect"
	"unspool/internal/pipeline"
	"unspool/internal/policy"
	"unspool/internal/queue"
	"unspool/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <file>",
		Short: "Probe, extract, and publish a media container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := logging.New(logging.Options{
					Level:  cfg.Logging.Level,
					Format: cfg.Logging.Format,
				})
				if err != nil {
					return err
				}

				sourcePath, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}

				pipe := pipeline.New(cfg, logger)
				manager := workflow.NewManager(cfg, store, pipe, logger)

				result, err := manager.RunNow(cmd.Context(), sourcePath)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Published %s\n", result.TitleID)
				fmt.Fprintf(cmd.OutOrStdout(), "Playlist: %s\n\n", result.Playlist)
				fmt.Fprintln(cmd.OutOrStdout(), renderArtifactTable(result))
				return nil
			})
		},
	}
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Probe a media container and report its stream classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			sourcePath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			pipe := pipeline.New(cfg, logging.NewNop())
			snap, err := pipe.Inspect(cmd.Context(), sourcePath)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStreamTable(snap))
			return nil
		},
	}
}

func renderArtifactTable(result *pipeline.Result) string {
	rows := make([][]string, 0, len(result.Artifacts))
	for _, artifact := range result.Artifacts {
		rows = append(rows, []string{
			fmt.Sprintf("%d", artifact.StreamIndex),
			string(artifact.Kind),
			artifact.Language,
			artifact.Name(),
		})
	}
	return renderTable(
		[]string{"Stream", "Kind", "Language", "Artifact"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderStreamTable(snap *inspect.Snapshot) string {
	indexes := make([]int, 0, snap.StreamCount())
	indexes = append(indexes, snap.Video...)
	indexes = append(indexes, snap.Audio...)
	indexes = append(indexes, snap.Subtitle...)

	rows := make([][]string, 0, len(indexes))
	for _, index := range indexes {
		info, err := snap.Describe(index)
		if err != nil {
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", info.Index),
			string(info.Type),
			info.Codec,
			info.Language,
			describeAction(policy.Classify(info)),
		})
	}
	return renderTable(
		[]string{"Stream", "Type", "Codec", "Language", "Action"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func describeAction(action policy.Action) string {
	switch action.Kind {
	case policy.KindTranscode:
		return "transcode to " + action.Target
	case policy.KindSkip:
		reason := strings.TrimSpace(action.Reason)
		if reason == "" {
			return "skip"
		}
		return "skip (" + reason + ")"
	default:
		return "copy"
	}
}
