package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/CTAG07/charpredict/pkg/ngram"
)

// checkpointStats is the model summary printed by stats and served by the API.
type checkpointStats struct {
	ngram.Stats
	CheckpointPath  string `json:"checkpoint_path,omitempty"`
	CheckpointBytes int64  `json:"checkpoint_bytes,omitempty"`
	CheckpointSize  string `json:"checkpoint_size,omitempty"`
}

func newCheckpointStats(m *ngram.Model, path string) checkpointStats {
	st := checkpointStats{Stats: m.Stats(), CheckpointPath: path}
	if path != "" {
		st.CheckpointBytes = fileSize(path)
		st.CheckpointSize = humanize.Bytes(uint64(st.CheckpointBytes))
	}
	return st
}

func newStatsCmd(a *app) *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show checkpoint statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workDir == "" {
				workDir = a.config.App.WorkDir
			}
			path := ngram.CheckpointPath(workDir)
			model, err := a.loadModel(path)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(newCheckpointStats(model, path), "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work_dir", "", "directory holding the checkpoint (default from config)")
	return cmd
}
